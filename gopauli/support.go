package gopauli

import "sync"

func NewCatalogContext() CatalogContext {
	ctx := &catalogContext{
		openCatalogs: make(map[Catalog]struct{}),
		closing:      make(chan struct{}),
		closed:       make(chan struct{}),
	}
	ctx.openCount.Add(1)
	go func() {
		<-ctx.Closing()
		ctx.openCount.Done()
		ctx.openCount.Wait()
		close(ctx.closed)
	}()
	return ctx
}

type catalogContext struct {
	mu           sync.Mutex
	openCount    sync.WaitGroup
	openCatalogs map[Catalog]struct{}
	closing      chan struct{}
	closed       chan struct{}
}

func (ctx *catalogContext) AttachCatalog(cat Catalog) {
	ctx.openCount.Add(1)
	ctx.mu.Lock()
	ctx.openCatalogs[cat] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) DetachCatalog(cat Catalog) {
	ctx.mu.Lock()
	if _, exists := ctx.openCatalogs[cat]; exists {
		delete(ctx.openCatalogs, cat)
		ctx.openCount.Done()
	}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) Closing() <-chan struct{} {
	return ctx.closing
}

func (ctx *catalogContext) Done() <-chan struct{} {
	return ctx.closed
}

func (ctx *catalogContext) Close() {
	close(ctx.closing)
	ctx.mu.Lock()
	for cat := range ctx.openCatalogs {
		go cat.Close()
	}
	ctx.mu.Unlock()
}

// DefaultSetSelector selects every valid set.
var DefaultSetSelector = SetSelector{
	Min: SetInfo{
		NumQubits:  1,
		NumStrings: 1,
	},
	Max: SetInfo{
		NumQubits:     MaxQubits,
		NumStrings:    255,
		NumComponents: 255,
	},
}

// SelectsSet is a convenience function used to see if a set is selected according to a SetSelector.
func (sel *SetSelector) SelectsSet(S SetState) bool {
	info := S.GetInfo()
	if info.NumQubits < sel.Min.NumQubits || info.NumStrings < sel.Min.NumStrings || info.NumComponents < sel.Min.NumComponents {
		return false
	}
	if info.NumQubits > sel.Max.NumQubits || info.NumStrings > sel.Max.NumStrings || (sel.Max.NumComponents > 0 && info.NumComponents > sel.Max.NumComponents) {
		return false
	}
	return true
}
