package zimlua

import (
	"errors"
	"testing"

	"github.com/Shopify/go-lua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zimlua/engine"
)

func TestCallString(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)
	obj := bindGlobal(t, rt, `o = { get_path = function() return "A/Foo" end }`, "o")
	defer obj.Close()

	got, err := callString(obj, "get_path")
	require.NoError(t, err)
	assert.Equal(t, "A/Foo", got)
}

func TestCallScriptErrorMessagePreserved(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)
	obj := bindGlobal(t, rt, `o = { feed = function() error("boom", 0) end }`, "o")
	defer obj.Close()

	_, err := callBytes(obj, "feed")
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "feed", callErr.Method)
	assert.Equal(t, "boom", callErr.Message)
}

func TestCallMissingMethod(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)
	obj := bindGlobal(t, rt, `o = {}`, "o")
	defer obj.Close()

	_, err := callString(obj, "get_path")
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "get_path", callErr.Method)
	assert.Contains(t, callErr.Message, "not implemented")
}

func TestCallWrongShape(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)
	obj := bindGlobal(t, rt, `
		o = {
			get_size = function() return "nope" end,
			get_path = function() return 42 end,
			negative = function() return -1 end,
			fractional = function() return 1.5 end,
		}
	`, "o")
	defer obj.Close()

	_, err := callUint64(obj, "get_size")
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Contains(t, callErr.Message, "expected unsigned integer result, got string")

	_, err = callString(obj, "get_path")
	require.ErrorAs(t, err, &callErr)
	assert.Contains(t, callErr.Message, "expected string result, got number")

	_, err = callUint64(obj, "negative")
	require.Error(t, err)

	_, err = callUint64(obj, "fractional")
	require.Error(t, err)
}

func TestCallNilObject(t *testing.T) {
	t.Parallel()

	_, err := callString(nil, "get_path")
	assert.ErrorIs(t, err, ErrUnboundObject)
}

func TestCallRestoresStack(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)
	obj := bindGlobal(t, rt, `
		o = {
			ok = function() return "fine" end,
			bad = function() error("nope") end,
		}
	`, "o")
	defer obj.Close()

	_, err := callString(obj, "ok")
	require.NoError(t, err)
	_, err = callString(obj, "bad")
	require.Error(t, err)
	_, err = callString(obj, "missing")
	require.Error(t, err)

	require.NoError(t, rt.Do(func(l *lua.State) error {
		assert.Equal(t, 0, l.Top())
		return nil
	}))
}

func TestHasCapability(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)
	obj := bindGlobal(t, rt, `
		o = {
			present = function() return {} end,
			disabled = false,
			truthy = true,
		}
	`, "o")
	defer obj.Close()

	ok, err := obj.hasCapability("present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = obj.hasCapability("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = obj.hasCapability("disabled")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = obj.hasCapability("truthy")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCallHints(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)
	obj := bindGlobal(t, rt, `
		o = {
			get_hints = function() return { compress = 1, front_article = 0 } end,
			bad_key = function() return { shiny = 1 } end,
			bad_value = function() return { compress = "yes" } end,
		}
	`, "o")
	defer obj.Close()

	hints, err := callHints(obj, "get_hints")
	require.NoError(t, err)
	assert.Equal(t, engine.Hints{
		engine.HintCompress:     1,
		engine.HintFrontArticle: 0,
	}, hints)

	_, err = callHints(obj, "bad_key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown hint "shiny"`)

	_, err = callHints(obj, "bad_value")
	require.Error(t, err)
}

func TestCallGeoPosition(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)
	obj := bindGlobal(t, rt, `
		o = {
			get_geoposition = function() return { latitude = 48.85, longitude = -2.35 } end,
			none = function() return nil end,
			partial = function() return { latitude = 1 } end,
		}
	`, "o")
	defer obj.Close()

	pos, err := callGeoPosition(obj, "get_geoposition")
	require.NoError(t, err)
	assert.True(t, pos.Valid)
	assert.InDelta(t, 48.85, pos.Latitude, 1e-9)
	assert.InDelta(t, -2.35, pos.Longitude, 1e-9)

	pos, err = callGeoPosition(obj, "none")
	require.NoError(t, err)
	assert.False(t, pos.Valid)

	_, err = callGeoPosition(obj, "partial")
	require.Error(t, err)
}

func TestCallObject(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t)
	obj := bindGlobal(t, rt, `
		o = {
			get_contentprovider = function()
				return { get_size = function() return 4 end }
			end,
			wrong = function() return 7 end,
		}
	`, "o")
	defer obj.Close()

	child, err := callObject(obj, "get_contentprovider")
	require.NoError(t, err)
	size, err := callUint64(child, "get_size")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), size)
	require.NoError(t, child.Close())

	_, err = callObject(obj, "wrong")
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Contains(t, callErr.Message, "expected object result")
}

func TestCallErrorUnwrap(t *testing.T) {
	t.Parallel()
	err := error(&CallError{Method: "feed", Message: "boom"})
	assert.Equal(t, `zimlua: call "feed": boom`, err.Error())

	var callErr *CallError
	assert.True(t, errors.As(err, &callErr))
}
