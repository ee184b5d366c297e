package server

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"light-rpc/message"
)

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

type methodType struct {
	method    reflect.Method
	withCtx   bool
	ArgType   reflect.Type
	ReplyType reflect.Type
}

// service holds the exported methods of one receiver that have an RPC
// signature:
//
//	func (r *T) Name(args *Args, reply *Reply) error
//	func (r *T) Name(ctx context.Context, args *Args, reply *Reply) error
type service struct {
	name   string
	rcvr   reflect.Value
	typ    reflect.Type
	method map[string]*methodType
}

func newService(rcvr any) (*service, error) {
	typ := reflect.TypeOf(rcvr)
	if typ == nil || typ.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("server: receiver must be a pointer, got %v", typ)
	}
	if typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("server: receiver must point to a struct, got %s", typ.Elem().Kind())
	}
	s := &service{
		name:   typ.Elem().Name(),
		rcvr:   reflect.ValueOf(rcvr),
		typ:    typ,
		method: make(map[string]*methodType),
	}
	s.registerMethods()
	if len(s.method) == 0 {
		return nil, fmt.Errorf("server: %s has no methods with an RPC signature", s.name)
	}
	return s, nil
}

func (s *service) registerMethods() {
	for i := 0; i < s.typ.NumMethod(); i++ {
		method := s.typ.Method(i)
		mt := method.Type
		if mt.NumOut() != 1 || mt.Out(0) != errorType {
			continue
		}

		first := 1
		withCtx := false
		switch {
		case mt.NumIn() == 4 && mt.In(1) == contextType:
			first, withCtx = 2, true
		case mt.NumIn() != 3:
			continue
		}
		if mt.In(first).Kind() != reflect.Ptr || mt.In(first+1).Kind() != reflect.Ptr {
			continue
		}

		s.method[wireName(method.Name)] = &methodType{
			method:    method,
			withCtx:   withCtx,
			ArgType:   mt.In(first).Elem(),
			ReplyType: mt.In(first + 1).Elem(),
		}
	}
}

// wireName lower-cases the first rune: GetDevices → getDevices.
func wireName(name string) string {
	r, n := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[n:]
}

// handler adapts a reflected method to a HandlerFunc. Absent or null
// params leave the args at their zero value.
func (s *service) handler(m *methodType) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (any, error) {
		argv := reflect.New(m.ArgType)
		if len(params) > 0 && string(params) != "null" {
			if err := json.Unmarshal(params, argv.Interface()); err != nil {
				return nil, &message.Error{Code: message.CodeInvalidParams, Message: err.Error()}
			}
		}
		replyv := reflect.New(m.ReplyType)

		if err := s.call(ctx, m, argv, replyv); err != nil {
			return nil, err
		}
		return replyv.Interface(), nil
	}
}

func (s *service) call(ctx context.Context, m *methodType, argv, replyv reflect.Value) error {
	args := []reflect.Value{s.rcvr, argv, replyv}
	if m.withCtx {
		args = []reflect.Value{s.rcvr, reflect.ValueOf(ctx), argv, replyv}
	}
	results := m.method.Func.Call(args)
	if !results[0].IsNil() {
		return results[0].Interface().(error)
	}
	return nil
}
