package zimlua

import (
	"testing"

	"github.com/Shopify/go-lua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zimlua/memengine"
)

func newTestRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	l := lua.NewState()
	lua.OpenLibraries(l)
	rt, err := Install(l, memengine.New(), opts...)
	require.NoError(t, err)
	return rt
}

// bindGlobal runs src and binds the named global as an object.
func bindGlobal(t *testing.T, rt *Runtime, src, name string) *Object {
	t.Helper()
	var obj *Object
	require.NoError(t, rt.Do(func(l *lua.State) error {
		if err := lua.DoString(l, src); err != nil {
			return err
		}
		l.Global(name)
		defer l.Pop(1)
		var err error
		obj, err = rt.bindObject(l, -1)
		return err
	}))
	return obj
}

func TestBindObjectNilValue(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)

	err := rt.Do(func(l *lua.State) error {
		l.PushNil()
		defer l.Pop(1)
		_, err := rt.bindObject(l, -1)
		return err
	})
	require.ErrorIs(t, err, ErrUnboundObject)
}

func TestBindObjectRuntimeNotReady(t *testing.T) {
	t.Parallel()
	var rt Runtime

	_, err := rt.bindObject(nil, 1)
	require.ErrorIs(t, err, ErrRuntimeNotReady)
}

func TestObjectCloseIdempotent(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)
	obj := bindGlobal(t, rt, `o = { get_path = function() return "a" end }`, "o")

	require.NoError(t, obj.Close())
	require.NoError(t, obj.Close())

	_, err := callString(obj, "get_path")
	assert.ErrorIs(t, err, ErrUnboundObject)
}

func TestRefSlotReuse(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)

	length := func() int {
		var n int
		require.NoError(t, rt.Do(func(l *lua.State) error {
			n = rt.refTableLength(l)
			return nil
		}))
		return n
	}

	obj := bindGlobal(t, rt, `o = {}`, "o")
	require.Equal(t, 1, length())
	require.NoError(t, obj.Close())

	// The freed slot is reused instead of growing the table.
	for range 5 {
		obj = bindGlobal(t, rt, `o = {}`, "o")
		assert.Equal(t, 1, length())
		require.NoError(t, obj.Close())
	}
}

func TestRefSlotsIndependent(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)

	a := bindGlobal(t, rt, `a = { get_path = function() return "a" end }`, "a")
	b := bindGlobal(t, rt, `b = { get_path = function() return "b" end }`, "b")

	require.NoError(t, a.Close())

	// Releasing one object must not disturb the other's pinned value.
	got, err := callString(b, "get_path")
	require.NoError(t, err)
	assert.Equal(t, "b", got)
	require.NoError(t, b.Close())
}

func TestObjectSurvivesGlobalRemoval(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)
	obj := bindGlobal(t, rt, `tmp = { get_path = function() return "pinned" end }`, "tmp")

	require.NoError(t, rt.DoString(`tmp = nil; collectgarbage("collect")`))

	got, err := callString(obj, "get_path")
	require.NoError(t, err)
	assert.Equal(t, "pinned", got)
	require.NoError(t, obj.Close())
}
