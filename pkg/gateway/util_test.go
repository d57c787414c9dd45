package gateway

import (
	"fmt"
	"github.com/cyrilix/airsim-bridge/pkg/simulator"
	"github.com/ugorji/go/codec"
	"go.uber.org/zap"
	"io"
	"net"
	"sync"
)

type rpcHandler func(params []interface{}) (interface{}, error)

type rpcCall struct {
	Method simulator.Method
	Params []interface{}
}

/* SimulatorMock is a msgpack-rpc server answering like the simulator */
type SimulatorMock struct {
	ln net.Listener

	muHandlers sync.Mutex
	handlers   map[simulator.Method]rpcHandler

	muCalls sync.Mutex
	calls   []rpcCall

	logger *zap.SugaredLogger
}

func (s *SimulatorMock) Handle(method simulator.Method, h rpcHandler) {
	s.muHandlers.Lock()
	defer s.muHandlers.Unlock()
	if s.handlers == nil {
		s.handlers = make(map[simulator.Method]rpcHandler)
	}
	s.handlers[method] = h
}

func (s *SimulatorMock) Calls() []rpcCall {
	s.muCalls.Lock()
	defer s.muCalls.Unlock()
	calls := make([]rpcCall, len(s.calls))
	copy(calls, s.calls)
	return calls
}

func (s *SimulatorMock) CallsOf(method simulator.Method) []rpcCall {
	var result []rpcCall
	for _, c := range s.Calls() {
		if c.Method == method {
			result = append(result, c)
		}
	}
	return result
}

func (s *SimulatorMock) Start() error {
	s.logger = zap.S().With("simulator", "mock")
	ln, err := net.Listen("tcp", "127.0.0.1:")
	if err != nil {
		return fmt.Errorf("unable to listen on port: %v", err)
	}
	s.ln = ln

	go func() {
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				s.logger.Debugf("connection close: %v", err)
				break
			}
			go s.handleConnection(conn)
		}
	}()
	return nil
}

func (s *SimulatorMock) Addr() string {
	return s.ln.Addr().String()
}

func (s *SimulatorMock) Close() error {
	s.logger.Debug("close mock server")
	if err := s.ln.Close(); err != nil {
		return fmt.Errorf("unable to close mock server: %v", err)
	}
	return nil
}

func (s *SimulatorMock) handleConnection(conn net.Conn) {
	defer conn.Close()
	dec := codec.NewDecoder(conn, mh)
	enc := codec.NewEncoder(conn, mh)

	for {
		var req []interface{}
		if err := dec.Decode(&req); err != nil {
			if err != io.EOF {
				s.logger.Debugf("unable to read request: %v", err)
			}
			return
		}
		if len(req) != 4 {
			s.logger.Errorf("invalid request: %v", req)
			return
		}
		msgId := req[1]
		method := simulator.Method(asString(req[2]))
		params, _ := req[3].([]interface{})

		s.muCalls.Lock()
		s.calls = append(s.calls, rpcCall{Method: method, Params: params})
		s.muCalls.Unlock()

		s.muHandlers.Lock()
		h, ok := s.handlers[method]
		s.muHandlers.Unlock()

		var resp []interface{}
		if !ok {
			resp = []interface{}{1, msgId, fmt.Sprintf("rpc method not found: %v", method), nil}
		} else if result, err := h(params); err != nil {
			resp = []interface{}{1, msgId, err.Error(), nil}
		} else {
			resp = []interface{}{1, msgId, nil, result}
		}
		if err := enc.Encode(resp); err != nil {
			s.logger.Errorf("unable to write response: %v", err)
			return
		}
	}
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return fmt.Sprintf("%v", v)
}

func reply(v interface{}) rpcHandler {
	return func(_ []interface{}) (interface{}, error) {
		return v, nil
	}
}
