package htmlparse_test

import (
	"github.com/yaklabco/html5bridge/pkg/native"
)

// fakeEngine returns scripted statuses and records what the parser asked of it.
type fakeEngine struct {
	handler native.TreeHandler

	setOpt    map[native.OptType]native.Error
	parse     func(h native.TreeHandler) native.Error
	completed native.Error
	destroy   native.Error

	opts      []native.OptType
	chunks    [][]byte
	destroyed int
}

var _ native.Engine = (*fakeEngine)(nil)

func (f *fakeEngine) SetOpt(opt native.OptType, params native.OptParams) native.Error {
	f.opts = append(f.opts, opt)
	if code, ok := f.setOpt[opt]; ok {
		return code
	}
	if p, ok := params.(native.TreeHandlerParams); ok {
		f.handler = p.Handler
	}
	return native.OK
}

func (f *fakeEngine) ParseChunk(data []byte) native.Error {
	f.chunks = append(f.chunks, append([]byte(nil), data...))
	if f.parse != nil {
		return f.parse(f.handler)
	}
	return native.NeedData
}

func (f *fakeEngine) InsertChunk([]byte) native.Error {
	return native.BadParm
}

func (f *fakeEngine) Completed() native.Error {
	return f.completed
}

func (f *fakeEngine) ReadCharset() (string, native.CharsetSource) {
	return "windows-1252", native.CharsetTentative
}

func (f *fakeEngine) Destroy() native.Error {
	f.destroyed++
	return f.destroy
}

// fakeFactory hands out engines built by build and keeps every one it created. When
// failOn is set, call number failOn (counting from 1) fails with failCode instead.
type fakeFactory struct {
	build    func() *fakeEngine
	engines  []*fakeEngine
	failOn   int
	failCode native.Error
	calls    int
}

func (ff *fakeFactory) factory() native.Factory {
	return func(string, bool) (native.Engine, native.Error) {
		ff.calls++
		if ff.failOn > 0 && ff.calls == ff.failOn {
			return nil, ff.failCode
		}
		e := ff.build()
		ff.engines = append(ff.engines, e)
		return e, native.OK
	}
}
