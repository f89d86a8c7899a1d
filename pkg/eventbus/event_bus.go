package eventbus

import (
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"
)

type EventBus interface {
	Publish(args ...interface{})
	Subscribe(handler interface{})
	Unsubscribe(handler interface{})
	Clear()
	SubscribersCount() int
}

type subscriber struct {
	handler interface{}
	ptr     uintptr
}

// publisherImpl dispatches synchronously on the publishing goroutine. It is
// safe for concurrent use: batch deletes publish from several goroutines.
type publisherImpl struct {
	log         *logrus.Logger
	mu          sync.RWMutex
	subscribers []subscriber
}

func NewEventPublisher(log *logrus.Logger) EventBus {
	return &publisherImpl{log: log}
}

// MatchSignature reports whether handler can be called with args.
func MatchSignature(handler interface{}, args []interface{}) bool {
	t := reflect.TypeOf(handler)
	if t.Kind() != reflect.Func {
		return false
	}

	if t.NumIn() != len(args) {
		return false
	}

	for i, arg := range args {
		paramType := t.In(i)

		if arg == nil {
			if paramType.Kind() != reflect.Interface && paramType.Kind() != reflect.Ptr {
				return false
			}
			continue
		}

		argType := reflect.TypeOf(arg)
		if paramType.Kind() == reflect.Interface {
			if !argType.Implements(paramType) {
				return false
			}
			continue
		}

		if !argType.AssignableTo(paramType) {
			return false
		}
	}

	return true
}

func (p *publisherImpl) Publish(args ...interface{}) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		in[i] = reflect.ValueOf(arg)
	}

	p.mu.RLock()
	subs := make([]subscriber, len(p.subscribers))
	copy(subs, p.subscribers)
	p.mu.RUnlock()

	handled := false
	for _, sub := range subs {
		if !MatchSignature(sub.handler, args) {
			continue
		}
		v := reflect.ValueOf(sub.handler)
		func() {
			defer func() {
				if r := recover(); r != nil && p.log != nil {
					p.log.Errorf("eventbus: handler %s panicked with args %v: %v", v.Type().String(), args, r)
				}
			}()
			v.Call(in)
			handled = true
		}()
	}

	if !handled && p.log != nil {
		p.log.Debugf("eventbus.Publish: no matching subscribers for event with args: %v", args)
	}
}

func (p *publisherImpl) Subscribe(handler interface{}) {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		panic("handler must be a function")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, subscriber{handler: handler, ptr: v.Pointer()})
}

// Unsubscribe removes the first subscription of the same function value.
func (p *publisherImpl) Unsubscribe(handler interface{}) {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		return
	}
	ptr := v.Pointer()
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, sub := range p.subscribers {
		if sub.ptr == ptr {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			return
		}
	}
}

func (p *publisherImpl) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = nil
}

func (p *publisherImpl) SubscribersCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers)
}
