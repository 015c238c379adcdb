package zimlua

import (
	"github.com/Shopify/go-lua"

	"github.com/meigma/zimlua/engine"
)

const creatorTypeName = "zim.creator"

func checkCreator(l *lua.State) engine.Creator {
	return checkWrapped[engine.Creator](l, 1, creatorTypeName, "creator")
}

// zimCreator implements zim.creator(path [, opts]).
//
// Recognized opts fields: compression (name string, or integer code when a
// compression table is configured), cluster_size, main_path, index_language
// (enables full-text indexing), workers, verbose.
func (rt *Runtime) zimCreator(l *lua.State) int {
	path := lua.CheckString(l, 1)
	cfg, err := rt.creatorConfig(l, 2)
	if err != nil {
		return raise(l, err)
	}

	var c engine.Creator
	cerr := rt.engineCall(func() error {
		var err error
		c, err = rt.eng.NewCreator(path, cfg)
		return err
	})
	if cerr != nil {
		return raise(l, cerr)
	}
	rt.log().Debug("creator opened", "path", path, "compression", cfg.Compression.String())
	pushWrapped(l, creatorTypeName, c)
	return 1
}

func (rt *Runtime) creatorConfig(l *lua.State, idx int) (engine.CreatorConfig, error) {
	var cfg engine.CreatorConfig
	if l.IsNoneOrNil(idx) {
		return cfg, nil
	}
	lua.CheckType(l, idx, lua.TypeTable)

	l.Field(idx, "compression")
	switch {
	case l.IsNil(-1):
	case l.IsNumber(-1) && !isStringValue(l, -1):
		if rt.comp == compressionTableUnset {
			l.Pop(1)
			lua.ArgumentError(l, idx, "integer compression codes need a compression table")
		}
		code, _ := l.ToInteger(-1)
		cfg.Compression = rt.comp.Compression(code)
	default:
		name, ok := l.ToString(-1)
		if !ok {
			l.Pop(1)
			lua.ArgumentError(l, idx, "compression must be a string or integer")
		}
		c, ok := ParseCompression(name)
		if !ok {
			l.Pop(1)
			lua.ArgumentError(l, idx, "unknown compression "+name)
		}
		cfg.Compression = c
	}
	l.Pop(1)

	l.Field(idx, "cluster_size")
	if !l.IsNil(-1) {
		n, ok := l.ToInteger(-1)
		if !ok {
			lua.ArgumentError(l, idx, "cluster_size must be an integer")
		}
		cfg.ClusterSize = n
	}
	l.Pop(1)

	l.Field(idx, "main_path")
	if !l.IsNil(-1) {
		s, ok := l.ToString(-1)
		if !ok {
			lua.ArgumentError(l, idx, "main_path must be a string")
		}
		cfg.MainPath = s
	}
	l.Pop(1)

	l.Field(idx, "index_language")
	if !l.IsNil(-1) {
		s, ok := l.ToString(-1)
		if !ok {
			lua.ArgumentError(l, idx, "index_language must be a string")
		}
		cfg.Indexing = true
		cfg.IndexLanguage = s
	}
	l.Pop(1)

	l.Field(idx, "workers")
	if !l.IsNil(-1) {
		n, ok := l.ToInteger(-1)
		if !ok {
			lua.ArgumentError(l, idx, "workers must be an integer")
		}
		cfg.Workers = n
	}
	l.Pop(1)

	l.Field(idx, "verbose")
	if !l.IsNil(-1) {
		cfg.Verbose = l.ToBoolean(-1)
	}
	l.Pop(1)

	return cfg, nil
}

// isStringValue distinguishes an actual Lua string from a number that
// ToString would coerce.
func isStringValue(l *lua.State, idx int) bool {
	return l.TypeOf(idx) == lua.TypeString
}

func (rt *Runtime) creatorMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "add_item", Function: rt.creatorAddItem},
		{Name: "add_metadata", Function: rt.creatorAddMetadata},
		{Name: "add_redirection", Function: rt.creatorAddRedirection},
		{Name: "add_illustration", Function: rt.creatorAddIllustration},
		{Name: "set_main_path", Function: rt.creatorSetMainPath},
		{Name: "finish", Function: rt.creatorFinish},
	}
}

// creatorAddItem binds the Lua item and hands it to the engine. The engine
// owns the bound item from then on and closes it once written; on a failed
// hand-off the binding closes it here instead.
func (rt *Runtime) creatorAddItem(l *lua.State) int {
	c := checkCreator(l)
	lua.CheckType(l, 2, lua.TypeTable)

	item, err := rt.BindItem(l, 2)
	if err != nil {
		return raise(l, err)
	}
	aerr := rt.engineCall(func() error {
		if err := c.AddItem(item); err != nil {
			item.Close()
			return err
		}
		return nil
	})
	if aerr != nil {
		return raise(l, aerr)
	}
	return 0
}

func (rt *Runtime) creatorAddMetadata(l *lua.State) int {
	c := checkCreator(l)
	name := lua.CheckString(l, 2)
	content := lua.CheckString(l, 3)
	mimetype := lua.OptString(l, 4, "text/plain")
	err := rt.engineCall(func() error {
		return c.AddMetadata(name, content, mimetype)
	})
	if err != nil {
		return raise(l, err)
	}
	return 0
}

func (rt *Runtime) creatorAddRedirection(l *lua.State) int {
	c := checkCreator(l)
	path := lua.CheckString(l, 2)
	title := lua.CheckString(l, 3)
	target := lua.CheckString(l, 4)

	var hints engine.Hints
	if !l.IsNoneOrNil(5) {
		lua.CheckType(l, 5, lua.TypeTable)
		h, err := hintsFromTable(l, 5)
		if err != nil {
			return raise(l, err)
		}
		hints = h
	}

	err := rt.engineCall(func() error {
		return c.AddRedirection(path, title, target, hints)
	})
	if err != nil {
		return raise(l, err)
	}
	return 0
}

func (rt *Runtime) creatorAddIllustration(l *lua.State) int {
	c := checkCreator(l)
	size := lua.CheckInteger(l, 2)
	data := lua.CheckString(l, 3)
	err := rt.engineCall(func() error {
		return c.AddIllustration(uint(size), []byte(data))
	})
	if err != nil {
		return raise(l, err)
	}
	return 0
}

func (rt *Runtime) creatorSetMainPath(l *lua.State) int {
	c := checkCreator(l)
	path := lua.CheckString(l, 2)
	c.SetMainPath(path)
	return 0
}

// creatorFinish blocks until every pending item is written. Engine workers
// keep dispatching item callbacks while it runs, which is why the lock is
// released for the duration.
func (rt *Runtime) creatorFinish(l *lua.State) int {
	c := checkCreator(l)
	err := rt.engineCall(c.Finish)
	if err != nil {
		return raise(l, err)
	}
	return 0
}
