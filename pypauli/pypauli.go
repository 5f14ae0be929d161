package pypauli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-python/gpython/py"

	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/pauli-systems/gopauli/libpauli"
	"github.com/pauli-systems/gopauli/libpauli/catalog"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	PyPauliSetType  = py.NewType("PauliSet", "a set of Pauli-string generators and its DLA classification")
	PySetStreamType = py.NewType("SetStream", "gopauli.SetStream")
	PyCatalogType   = py.NewType("Catalog", "gopauli.Catalog")
	PyWorkspaceType = py.NewType("Workspace", "collects active session resources and catalogs")
)

// PySet wraps a libpauli.Set as a gpython object.
type PySet struct {
	*libpauli.Set
}

func (ps *PySet) Type() *py.Type {
	return PyPauliSetType
}

func (ps *PySet) M__str__() (py.Object, error) {
	writer := strings.Builder{}
	ps.WriteAsString(&writer, gopauli.DefaultPrintOpts)
	return py.String(writer.String()), nil
}

func (ps *PySet) M__repr__() (py.Object, error) {
	return ps.M__str__()
}

// PyStream wraps a gopauli.SetStream.
type PyStream struct {
	*gopauli.SetStream
}

func (stream *PyStream) Type() *py.Type {
	return PySetStreamType
}

// PyCatalog wraps an open gopauli.Catalog.
type PyCatalog struct {
	gopauli.Catalog
}

func (cat *PyCatalog) Type() *py.Type {
	return PyCatalogType
}

func getSetFromObj(obj py.Object) (*PySet, error) {
	if set, ok := obj.(*PySet); ok {
		return set, nil
	}
	attr, err := py.GetAttrString(obj, "_set")
	if err != nil {
		return nil, py.ExceptionNewf(py.TypeError, "expected PauliSet object (got %v)", obj.Type().Name)
	}
	set, ok := attr.(*PySet)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected PauliSet object (got %v)", obj.Type().Name)
	}
	return set, nil
}

// Arg 1 (str, optional): a set expression, e.g. "XX, ZI; IZ"
func ph_NewSet(module py.Object, args py.Tuple) (py.Object, error) {
	set := &PySet{
		Set: libpauli.NewSet(nil),
	}
	if len(args) > 0 {
		expr, ok := args[0].(py.String)
		if !ok {
			return nil, py.ExceptionNewf(py.TypeError, "expected str (got %v)", args[0].Type().Name)
		}
		if err := set.InitFromString(string(expr)); err != nil {
			return nil, py.ExceptionNewf(py.ValueError, "%v", err)
		}
	}
	return py.Object(set), nil
}

// Arg 1 (int): qubit count
// Arg 2 (int): string count
// Arg 3 (int, optional): seed
func ph_RandomSet(module py.Object, args py.Tuple) (py.Object, error) {
	if len(args) < 2 {
		return nil, py.ExceptionNewf(py.TypeError, "RandomSet expects (qubits, strings[, seed])")
	}
	var nq, count py.Object
	err := py.ParseTuple(args[:2], "ii", &nq, &count)
	if err != nil {
		return nil, err
	}
	seed := int64(1)
	if len(args) > 2 {
		v, err := py.GetInt(args[2])
		if err != nil {
			return nil, err
		}
		seed = int64(v)
	}
	rnd := libpauli.NewRand(seed)
	set, err := rnd.Set(int(nq.(py.Int)), int(count.(py.Int)))
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Object(&PySet{Set: set}), nil
}

func ph_Set_NumQubits(self py.Object, args py.Tuple) (py.Object, error) {
	set := self.(*PySet)
	return py.Object(py.Int(set.NumQubits())), nil
}

func ph_Set_NumStrings(self py.Object, args py.Tuple) (py.Object, error) {
	set := self.(*PySet)
	return py.Object(py.Int(set.NumStrings())), nil
}

func ph_Set_Add(self py.Object, args py.Tuple) (py.Object, error) {
	set := self.(*PySet)
	for i, arg := range args {
		expr, isStr := arg.(py.String)
		if !isStr {
			return nil, py.ExceptionNewf(py.TypeError, "error reading arg %d: expected str", i)
		}
		p, err := gopauli.PauliFromString(string(expr))
		if err != nil {
			return nil, py.ExceptionNewf(py.ValueError, "error reading arg %d: %v", i, err)
		}
		if err := set.Add(p); err != nil {
			return nil, py.ExceptionNewf(py.ValueError, "%v", err)
		}
	}
	return py.Object(set), nil
}

func ph_Set_Canonize(self py.Object, args py.Tuple) (py.Object, error) {
	set := self.(*PySet)
	if err := set.Canonize(); err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.Object(set), nil
}

func ph_Set_Algebra(self py.Object, args py.Tuple) (py.Object, error) {
	set := self.(*PySet)
	name, err := set.Algebra()
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.String(name), nil
}

func ph_Set_IsAlgebra(self py.Object, args py.Tuple) (py.Object, error) {
	set := self.(*PySet)
	var name string
	if err := py.LoadTuple(args, []interface{}{&name}); err != nil {
		return nil, err
	}
	ok, err := set.IsAlgebra(name)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	if ok {
		return py.True, nil
	}
	return py.False, nil
}

func ph_Set_DLADim(self py.Object, args py.Tuple) (py.Object, error) {
	set := self.(*PySet)
	dim, err := set.DLADim()
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.Int(dim), nil
}

func pauliTuple(strs []gopauli.Pauli) py.Tuple {
	out := make(py.Tuple, len(strs))
	for i, p := range strs {
		out[i] = py.String(p.String())
	}
	return out
}

func ph_Set_Dependents(self py.Object, args py.Tuple) (py.Object, error) {
	set := self.(*PySet)
	deps, err := set.Dependents()
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.Object(pauliTuple(deps)), nil
}

func ph_Set_Independents(self py.Object, args py.Tuple) (py.Object, error) {
	set := self.(*PySet)
	indeps, err := set.Independents()
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.Object(pauliTuple(indeps)), nil
}

func ph_Set_CanonicVertices(self py.Object, args py.Tuple) (py.Object, error) {
	set := self.(*PySet)
	verts, err := set.CanonicVertices()
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.Object(pauliTuple(verts)), nil
}

func ph_Set_IsEq(self py.Object, args py.Tuple) (py.Object, error) {
	set := self.(*PySet)
	other, err := getSetFromObj(args[0])
	if err != nil {
		return nil, err
	}
	eq, err := set.IsEq(other.Set)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	if eq {
		return py.True, nil
	}
	return py.False, nil
}

func ph_Set_Stream(self py.Object, args py.Tuple) (py.Object, error) {
	set := self.(*PySet)
	next := gopauli.StreamSet(set.MakeCopy())
	return py.Object(&PyStream{SetStream: next}), nil
}

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

type Workspace struct {
	CatalogCtx gopauli.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return PyWorkspaceType
}

func ph_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{
			CatalogCtx: gopauli.NewCatalogContext(),
		}
		wsObj = ws
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

func ph_Workspace_CatalogExists(self py.Object, args py.Tuple) (py.Object, error) {
	_ = self.(*Workspace)

	var pathname string
	err := py.LoadTuple(args, []interface{}{&pathname})
	if err != nil {
		return nil, err
	}
	_, err = os.Stat(pathname)
	if os.IsNotExist(err) {
		return py.False, nil
	}
	return py.True, nil
}

func ph_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathname string
	var flags, qubitLimit int32
	err := py.LoadTuple(args, []interface{}{&pathname, &flags, &qubitLimit})
	if err != nil {
		return nil, err
	}

	opts := gopauli.CatalogOpts{
		ReadOnly:   (flags & READ_ONLY) != 0,
		DbPathName: pathname,
		QubitLimit: qubitLimit,
	}

	cat, err := catalog.OpenCatalog(ws.CatalogCtx, opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}

	return py.Object(&PyCatalog{Catalog: cat}), nil
}

func ph_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*PyCatalog)
	if cat.Catalog != nil {
		cat.Catalog.Close()
		cat.Catalog = nil
	}
	return py.None, nil
}

func ph_Catalog_Select(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*PyCatalog)
	sel := gopauli.DefaultSetSelector
	if len(args) > 0 {
		if err := getSetSelector(args[0], &sel); err != nil {
			return nil, err
		}
	}

	next := gopauli.SelectFromCatalog(cat.Catalog, sel)
	return py.Object(&PyStream{SetStream: next}), nil
}

func ph_Catalog_NumClasses(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*PyCatalog)

	nq, err := py.GetInt(args[0])
	if err != nil {
		return nil, err
	}
	return py.Int(cat.NumClasses(byte(nq))), nil
}

func ph_Catalog_NumSets(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*PyCatalog)

	nq, err := py.GetInt(args[0])
	if err != nil {
		return nil, err
	}
	return py.Int(cat.NumSets(byte(nq))), nil
}

func ph_SetStream_Go(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(*PyStream)
	count := stream.PullAll()
	return py.Int(count), nil
}

type echoToWriter struct {
	stdout *os.File
	to     io.WriteCloser
}

func (echo *echoToWriter) Write(buf []byte) (int, error) {
	if echo.to == nil {
		return echo.stdout.Write(buf)
	}
	return echo.to.Write(buf)
}

func (echo *echoToWriter) Close() error {
	if echo.to != nil {
		return echo.to.Close()
	}
	return nil
}

var gOutCount = int32(0)

// See lib/gopauli.py Print() docs
func ph_SetStream_Print(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	stream := self.(*PyStream)
	var pathname string

	opts := gopauli.DefaultPrintOpts

	py.LoadTuple(args, []interface{}{&opts.Label})
	if opts.Label == "" {
		py.LoadAttr(kwargs, "label", &opts.Label)
	}

	atomic.AddInt32(&gOutCount, 1)
	if opts.Label == "" {
		opts.Label = fmt.Sprintf("out[%d]", gOutCount)
	}

	py.LoadAttr(kwargs, "exprs", &opts.Exprs)
	py.LoadAttr(kwargs, "algebra", &opts.Algebra)
	py.LoadAttr(kwargs, "dim", &opts.DLADim)
	py.LoadAttr(kwargs, "morphs", &opts.Morphs)
	py.LoadAttr(kwargs, "file", &pathname)

	writer := &echoToWriter{
		stdout: os.Stdout,
	}
	if len(pathname) > 0 {
		os.MkdirAll(filepath.Dir(pathname), 0700)

		file, err := os.OpenFile(pathname, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
		}
		writer.to = file
	}

	next := stream.Print(writer, opts)
	return py.Object(&PyStream{SetStream: next}), nil
}

func ph_SetStream_AddTo(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(*PyStream)
	cat, ok := args[0].(*PyCatalog)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Catalog object (got %v)", args[0].Type().Name)
	}
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "%v", errors.New("catalog is in read-only mode"))
	}

	next := stream.AddTo(cat.Catalog, gopauli.AddSetOpts{})
	return py.Object(&PyStream{SetStream: next}), nil
}

func ph_SetStream_DropDupes(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(*PyStream)

	// A memory resident signature set that gets auto-closed when the stream closes
	dd := libpauli.NewDropDupes()
	opts := gopauli.AddSetOpts{
		AutoCloseTarget: true,
	}

	next := stream.AddTo(dd, opts)
	return py.Object(&PyStream{SetStream: next}), nil
}

func ph_SetStream_Canonize(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(*PyStream)
	next := stream.Canonize()
	return py.Object(&PyStream{SetStream: next}), nil
}

func ph_SetStream_Select(self py.Object, args py.Tuple) (py.Object, error) {
	sel := gopauli.DefaultSetSelector
	if err := getSetSelector(args[0], &sel); err != nil {
		return nil, err
	}
	stream := self.(*PyStream)
	next := stream.SelectFromStream(sel)
	return py.Object(&PyStream{SetStream: next}), nil
}

func init() {

	/////////////////////////////////
	// PauliSet
	{
		PyPauliSetType.Dict["NumQubits"] = py.MustNewMethod("NumQubits", ph_Set_NumQubits, 0, "")
		PyPauliSetType.Dict["NumStrings"] = py.MustNewMethod("NumStrings", ph_Set_NumStrings, 0, "")
		PyPauliSetType.Dict["Add"] = py.MustNewMethod("Add", ph_Set_Add, 0, "appends generators given as strings")
		PyPauliSetType.Dict["Canonize"] = py.MustNewMethod("Canonize", ph_Set_Canonize, 0, "")
		PyPauliSetType.Dict["Algebra"] = py.MustNewMethod("Algebra", ph_Set_Algebra, 0, "returns the classified algebra name")
		PyPauliSetType.Dict["IsAlgebra"] = py.MustNewMethod("IsAlgebra", ph_Set_IsAlgebra, 0, "")
		PyPauliSetType.Dict["DLADim"] = py.MustNewMethod("DLADim", ph_Set_DLADim, 0, "")
		PyPauliSetType.Dict["Dependents"] = py.MustNewMethod("Dependents", ph_Set_Dependents, 0, "")
		PyPauliSetType.Dict["Independents"] = py.MustNewMethod("Independents", ph_Set_Independents, 0, "")
		PyPauliSetType.Dict["CanonicVertices"] = py.MustNewMethod("CanonicVertices", ph_Set_CanonicVertices, 0, "")
		PyPauliSetType.Dict["IsEq"] = py.MustNewMethod("IsEq", ph_Set_IsEq, 0, "")
		PyPauliSetType.Dict["Stream"] = py.MustNewMethod("Stream", ph_Set_Stream, 0, "")
	}

	/////////////////////////////////
	// Catalog
	{
		PyCatalogType.Dict["Select"] = py.MustNewMethod("Select", ph_Catalog_Select, 0, "")
		PyCatalogType.Dict["NumClasses"] = py.MustNewMethod("NumClasses", ph_Catalog_NumClasses, 0, "")
		PyCatalogType.Dict["NumSets"] = py.MustNewMethod("NumSets", ph_Catalog_NumSets, 0, "")
		PyCatalogType.Dict["Close"] = py.MustNewMethod("Close", ph_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		PyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", ph_Workspace_OpenCatalog, 0, "")
		PyWorkspaceType.Dict["CatalogExists"] = py.MustNewMethod("CatalogExists", ph_Workspace_CatalogExists, 0, "")
	}

	/////////////////////////////////
	// SetStream
	{
		PySetStreamType.Dict["Go"] = py.MustNewMethod("Go", ph_SetStream_Go, 0, "counts the number of sets output from the SetStream")
		PySetStreamType.Dict["Print"] = py.MustNewMethod("Print", ph_SetStream_Print, 0, "prints each set from the SetStream")
		PySetStreamType.Dict["AddTo"] = py.MustNewMethod("AddTo", ph_SetStream_AddTo, 0, "")
		PySetStreamType.Dict["Canonize"] = py.MustNewMethod("Canonize", ph_SetStream_Canonize, 0, "")
		PySetStreamType.Dict["DropDupes"] = py.MustNewMethod("DropDupes", ph_SetStream_DropDupes, 0, "")
		PySetStreamType.Dict["Select"] = py.MustNewMethod("Select", ph_SetStream_Select, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("NewSet", ph_NewSet, 0, ""),
			py.MustNewMethod("RandomSet", ph_RandomSet, 0, ""),
			py.MustNewMethod("GetWorkspace", ph_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"PY_VERSION":  py.String("v3.4.0"),
			"MAX_QUBITS":  py.Int(gopauli.MaxQubits),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_gopauli",
				Doc:  "dynamical Lie algebra classification gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}

func intAttr(obj py.Object, key string, min, max int64) int64 {
	attr, err := py.GetAttrString(obj, key)
	if err != nil {
		panic(err)
	}
	val, _ := py.GetInt(attr)
	intVal := int64(val)
	if intVal < min {
		intVal = min
	}
	if intVal > max {
		intVal = max
	}
	return intVal
}

func byteAttr(obj py.Object, attr string) byte {
	return byte(intAttr(obj, attr, 0, 255))
}

func exportSetInfo(setInfo py.Object) gopauli.SetInfo {
	return gopauli.SetInfo{
		NumQubits:     byteAttr(setInfo, "qubits"),
		NumStrings:    byteAttr(setInfo, "strings"),
		NumComponents: byteAttr(setInfo, "components"),
	}
}

func getSetSelector(set_selector py.Object, sel *gopauli.SetSelector) error {

	info, err := py.GetAttrString(set_selector, "min")
	if err != nil {
		return err
	}
	sel.Min = exportSetInfo(info)

	info, err = py.GetAttrString(set_selector, "max")
	if err != nil {
		return err
	}
	sel.Max = exportSetInfo(info)

	if err = py.LoadAttr(set_selector, "algebra", &sel.Algebra); err != nil {
		return err
	}

	if err = py.LoadAttr(set_selector, "unique_classes", &sel.UniqueClasses); err != nil {
		return err
	}

	return nil
}
