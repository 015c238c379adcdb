package zimlua

import (
	"errors"

	"github.com/Shopify/go-lua"

	"github.com/meigma/zimlua/engine"
)

// Install wires an archive engine into a Lua state and returns the runtime
// that mediates between them.
//
// It registers the module table (named "zim" unless overridden with
// [WithModuleName]) as a global, along with the metatables for every bridge
// type. The state must not be executing when Install is called.
func Install(l *lua.State, eng engine.Engine, opts ...Option) (*Runtime, error) {
	if l == nil {
		return nil, errors.New("zimlua: nil lua state")
	}
	if eng == nil {
		return nil, errors.New("zimlua: nil engine")
	}

	rt := &Runtime{
		state:  l,
		eng:    eng,
		module: "zim",
	}
	for _, opt := range opts {
		opt(rt)
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.initRefs(l)

	rt.registerType(l, archiveTypeName, rt.archiveMethods())
	rt.registerType(l, entryTypeName, rt.entryMethods())
	rt.registerType(l, itemTypeName, rt.itemMethods())
	rt.registerType(l, blobTypeName, rt.blobMethods())
	rt.registerType(l, searcherTypeName, rt.searcherMethods())
	rt.registerType(l, searchTypeName, rt.searchMethods())
	rt.registerType(l, searchResultsTypeName, rt.searchResultsMethods())
	rt.registerType(l, suggestionSearcherTypeName, rt.suggestionSearcherMethods())
	rt.registerType(l, suggestionSearchTypeName, rt.suggestionSearchMethods())
	rt.registerType(l, suggestionResultsTypeName, rt.suggestionResultsMethods())
	rt.registerType(l, suggestionItemTypeName, rt.suggestionItemMethods())
	rt.registerType(l, creatorTypeName, rt.creatorMethods())

	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "open", Function: rt.zimOpen},
		{Name: "searcher", Function: rt.zimSearcher},
		{Name: "suggestion_searcher", Function: rt.zimSuggestionSearcher},
		{Name: "creator", Function: rt.zimCreator},
	}, 0)
	l.SetGlobal(rt.module)

	rt.log().Debug("module installed", "module", rt.module)
	return rt, nil
}

// zimOpen implements zim.open(path).
func (rt *Runtime) zimOpen(l *lua.State) int {
	path := lua.CheckString(l, 1)
	var a engine.Archive
	err := rt.engineCall(func() error {
		var err error
		a, err = rt.eng.OpenArchive(path)
		return err
	})
	if err != nil {
		return raise(l, err)
	}
	rt.log().Debug("archive opened", "path", path)
	pushArchive(l, a)
	return 1
}

// zimSearcher implements zim.searcher(archive).
func (rt *Runtime) zimSearcher(l *lua.State) int {
	a := checkArchive(l)
	s, err := rt.eng.NewSearcher(a)
	if err != nil {
		return raise(l, err)
	}
	pushWrapped(l, searcherTypeName, s)
	return 1
}

// zimSuggestionSearcher implements zim.suggestion_searcher(archive).
func (rt *Runtime) zimSuggestionSearcher(l *lua.State) int {
	a := checkArchive(l)
	s, err := rt.eng.NewSuggestionSearcher(a)
	if err != nil {
		return raise(l, err)
	}
	pushWrapped(l, suggestionSearcherTypeName, s)
	return 1
}
