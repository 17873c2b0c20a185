package cgroupacct

type fakeAccessor struct {
	files  map[string]string
	exists map[string]bool
}

func newFake() *fakeAccessor {
	return &fakeAccessor{files: map[string]string{}, exists: map[string]bool{}}
}

func key(controller, cg, file string) string {
	return controller + "|" + cg + "|" + file
}

func (f *fakeAccessor) set(controller, cg, file, content string) {
	f.files[key(controller, cg, file)] = content
	f.exists[key(controller, cg, file)] = true
}

func (f *fakeAccessor) Get(controller, cg, file string) (string, bool) {
	v, ok := f.files[key(controller, cg, file)]
	return v, ok
}

func (f *fakeAccessor) ParamExists(controller, cg, file string) bool {
	return f.exists[key(controller, cg, file)]
}
