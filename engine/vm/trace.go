package vm

import "reflect"

// NewTraceEntryPoints returns a complete entry point table that calls fn with the entry point
// name and its arguments instead of touching a graphics context. Functions with results return
// zero values. It is used for dry runs, instruction dumps and tests.
//
// Parameters:
//   - fn: the function receiving every call
//
// Returns:
//   - *EntryPoints: the trace table
func NewTraceEntryPoints(fn func(name string, args []any)) *EntryPoints {
	ep := &EntryPoints{}
	v := reflect.ValueOf(ep).Elem()
	t := v.Type()
	for n := 0; n < v.NumField(); n++ {
		name := t.Field(n).Name
		ft := t.Field(n).Type
		v.Field(n).Set(reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
			args := make([]any, len(in))
			for k, a := range in {
				args[k] = a.Interface()
			}
			fn(name, args)
			out := make([]reflect.Value, ft.NumOut())
			for k := range out {
				out[k] = reflect.Zero(ft.Out(k))
			}
			return out
		}))
	}
	return ep
}

// TraceLoader returns a Loader producing NewTraceEntryPoints(fn).
//
// Parameters:
//   - fn: the function receiving every call
//
// Returns:
//   - Loader: the loader
func TraceLoader(fn func(name string, args []any)) Loader {
	return func() (*EntryPoints, error) {
		return NewTraceEntryPoints(fn), nil
	}
}
