package discovery

import "github.com/stretchr/testify/mock"

// mockTransport and mockCodec are hand-authored to the shape
// github.com/vektra/mockery/v2 would generate for the Transport and
// Codec interfaces: mock.Mock embedding with .On(...).Return(...) setup.

type mockTransport struct {
	mock.Mock
	handler MessageHandler
}

func (m *mockTransport) OnMessage(handler MessageHandler) {
	m.handler = handler
	m.Called(handler)
}

func (m *mockTransport) Send(payload []byte) error {
	args := m.Called(payload)
	return args.Error(0)
}

func (m *mockTransport) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newMockTransport() *mockTransport {
	m := &mockTransport{}
	m.On("OnMessage", mock.Anything).Return()
	m.On("Send", mock.Anything).Return(nil)
	m.On("Close").Return(nil)
	return m
}

type mockCodec struct {
	mock.Mock
}

func (m *mockCodec) Encode(msg *Message) ([]byte, error) {
	args := m.Called(msg)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockCodec) EncodeRecord(rec *Record) ([]byte, error) {
	args := m.Called(rec)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockCodec) Decode(payload []byte) (*Message, error) {
	args := m.Called(payload)
	msg, _ := args.Get(0).(*Message)
	return msg, args.Error(1)
}

func newMockCodec() *mockCodec {
	m := &mockCodec{}
	m.On("Encode", mock.Anything).Return([]byte("msg"), nil)
	m.On("EncodeRecord", mock.Anything).Return([]byte("rec"), nil)
	return m
}
