package zimlua

import (
	"errors"
	"fmt"
	"math"

	"github.com/Shopify/go-lua"

	"github.com/meigma/zimlua/engine"
)

// call invokes a named method on a bound object and marshals the single
// result value.
//
// Every typed dispatch goes through this one entry point so the lock
// discipline and error translation are enforced exactly once: the
// exclusivity lock is held for the duration of the Lua call, a script error
// or a result of the wrong shape becomes a *CallError carrying the Lua
// message, and the stack is restored no matter what.
func call[T any](o *Object, method string, marshal func(l *lua.State, idx int) (T, error)) (T, error) {
	var zero T
	if o == nil || o.ref == noRef {
		return zero, ErrUnboundObject
	}
	rt := o.rt
	rt.mu.Lock()
	defer rt.mu.Unlock()

	l := rt.state
	base := l.Top()

	rt.pushRef(l, o.ref)
	l.Field(-1, method)
	if l.IsNoneOrNil(-1) {
		l.SetTop(base)
		return zero, &CallError{Method: method, Message: "method not implemented"}
	}
	l.Insert(-2) // stack: method, object (object becomes the self argument)

	if err := l.ProtectedCall(1, 1, 0); err != nil {
		msg := err.Error()
		if l.Top() > base {
			if s, ok := l.ToString(-1); ok && s != "" {
				msg = s
			}
		}
		l.SetTop(base)
		rt.log().Debug("dispatch failed", "method", method, "error", msg)
		return zero, &CallError{Method: method, Message: msg}
	}

	v, err := marshal(l, -1)
	l.SetTop(base)
	if err != nil {
		return zero, &CallError{Method: method, Message: err.Error()}
	}
	return v, nil
}

// hasCapability reports whether the object exposes a usable attribute under
// name. A missing attribute, nil, and an explicit false all mean "absent".
//
// Callers must probe optional capabilities with hasCapability before
// dispatching them: invoking a missing method is an error condition, not a
// value-absence condition.
func (o *Object) hasCapability(name string) (bool, error) {
	if o == nil || o.ref == noRef {
		return false, ErrUnboundObject
	}
	rt := o.rt
	rt.mu.Lock()
	defer rt.mu.Unlock()

	l := rt.state
	base := l.Top()
	rt.pushRef(l, o.ref)
	l.Field(-1, name)
	t := l.TypeOf(-1)
	present := t != lua.TypeNil && !(t == lua.TypeBoolean && !l.ToBoolean(-1))
	l.SetTop(base)
	return present, nil
}

// Typed entry points, one per marshaled return shape.

func callString(o *Object, method string) (string, error) {
	return call(o, method, marshalString)
}

func callBytes(o *Object, method string) ([]byte, error) {
	return call(o, method, marshalBytes)
}

func callBool(o *Object, method string) (bool, error) {
	return call(o, method, marshalBool)
}

func callUint64(o *Object, method string) (uint64, error) {
	return call(o, method, marshalUint64)
}

func callUint32(o *Object, method string) (uint32, error) {
	return call(o, method, marshalUint32)
}

func callHints(o *Object, method string) (engine.Hints, error) {
	return call(o, method, marshalHints)
}

func callGeoPosition(o *Object, method string) (engine.GeoPosition, error) {
	return call(o, method, marshalGeoPosition)
}

// callObject binds the returned Lua value as a new object handle, used for
// chained capabilities (content providers, index data).
func callObject(o *Object, method string) (*Object, error) {
	return call(o, method, func(l *lua.State, idx int) (*Object, error) {
		switch l.TypeOf(idx) {
		case lua.TypeTable, lua.TypeUserData:
			return &Object{rt: o.rt, ref: o.rt.acquireRef(l, idx)}, nil
		default:
			return nil, fmt.Errorf("expected object result, got %s", luaTypeName(l, idx))
		}
	})
}

// Marshal helpers. All are strict about the Lua result type; a mismatch is
// reported as a wrong-shape error by call.

func marshalString(l *lua.State, idx int) (string, error) {
	if l.TypeOf(idx) != lua.TypeString {
		return "", fmt.Errorf("expected string result, got %s", luaTypeName(l, idx))
	}
	s, _ := l.ToString(idx)
	return s, nil
}

func marshalBytes(l *lua.State, idx int) ([]byte, error) {
	s, err := marshalString(l, idx)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func marshalBool(l *lua.State, idx int) (bool, error) {
	if l.TypeOf(idx) != lua.TypeBoolean {
		return false, fmt.Errorf("expected boolean result, got %s", luaTypeName(l, idx))
	}
	return l.ToBoolean(idx), nil
}

func marshalUint64(l *lua.State, idx int) (uint64, error) {
	if l.TypeOf(idx) != lua.TypeNumber {
		return 0, fmt.Errorf("expected unsigned integer result, got %s", luaTypeName(l, idx))
	}
	n, _ := l.ToNumber(idx)
	if n < 0 || n != math.Trunc(n) {
		return 0, fmt.Errorf("expected unsigned integer result, got %v", n)
	}
	return uint64(n), nil
}

func marshalUint32(l *lua.State, idx int) (uint32, error) {
	n, err := marshalUint64(l, idx)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("result %d overflows 32 bits", n)
	}
	return uint32(n), nil
}

func marshalHints(l *lua.State, idx int) (engine.Hints, error) {
	if l.TypeOf(idx) != lua.TypeTable {
		return nil, fmt.Errorf("expected hints table result, got %s", luaTypeName(l, idx))
	}
	return hintsFromTable(l, idx)
}

func marshalGeoPosition(l *lua.State, idx int) (engine.GeoPosition, error) {
	switch l.TypeOf(idx) {
	case lua.TypeNil:
		// Explicit "no position".
		return engine.GeoPosition{}, nil
	case lua.TypeTable:
	default:
		return engine.GeoPosition{}, fmt.Errorf("expected geoposition table result, got %s", luaTypeName(l, idx))
	}

	idx = l.AbsIndex(idx)
	l.Field(idx, "latitude")
	lat, okLat := l.ToNumber(-1)
	l.Field(idx, "longitude")
	lon, okLon := l.ToNumber(-1)
	l.Pop(2)
	if !okLat || !okLon {
		return engine.GeoPosition{}, errors.New("geoposition requires numeric latitude and longitude")
	}
	return engine.GeoPosition{Valid: true, Latitude: lat, Longitude: lon}, nil
}

// hintsFromTable reads an {name = value} hints table at idx.
func hintsFromTable(l *lua.State, idx int) (engine.Hints, error) {
	idx = l.AbsIndex(idx)
	hints := engine.Hints{}
	l.PushNil()
	for l.Next(idx) {
		if l.TypeOf(-2) != lua.TypeString {
			l.Pop(2)
			return nil, errors.New("hint keys must be strings")
		}
		key, _ := l.ToString(-2)
		var h engine.Hint
		switch key {
		case "compress":
			h = engine.HintCompress
		case "front_article":
			h = engine.HintFrontArticle
		default:
			l.Pop(2)
			return nil, fmt.Errorf("unknown hint %q", key)
		}
		if l.TypeOf(-1) != lua.TypeNumber {
			l.Pop(2)
			return nil, fmt.Errorf("hint %q must be a number", key)
		}
		n, _ := l.ToNumber(-1)
		hints[h] = int64(n)
		l.Pop(1)
	}
	return hints, nil
}

func luaTypeName(l *lua.State, idx int) string {
	switch l.TypeOf(idx) {
	case lua.TypeNil:
		return "nil"
	case lua.TypeBoolean:
		return "boolean"
	case lua.TypeNumber:
		return "number"
	case lua.TypeString:
		return "string"
	case lua.TypeTable:
		return "table"
	case lua.TypeFunction:
		return "function"
	case lua.TypeUserData:
		return "userdata"
	case lua.TypeThread:
		return "thread"
	default:
		return "none"
	}
}
