// Package taskctx implements the execution Context passed to every step: a
// bag of scripting-language variables plus the hooks a host application
// uses to extend step execution. Named taskctx, not context, to avoid
// shadowing the standard library's context package.
package taskctx

import (
	"github.com/taskolib/taskolib/pkg/value"
)

// StepSetupFunc runs before the step-setup script and the step's own
// script, in the same Script Host instance, before the step's whitelisted
// variables are imported. It is how a host application injects custom
// helper functions into every step.
type StepSetupFunc func(host ScriptSetupTarget) error

// ScriptSetupTarget is the subset of the Script Host a StepSetupFunc is
// allowed to touch: registering additional builtins.
type ScriptSetupTarget interface {
	RegisterFunc(name string, fn func(args ...value.Value) (value.Value, error))
}

// Context carries the named variables exchanged with scripts plus the
// optional step-setup script/function. The message callback is not part of
// Context; it is passed separately to engine.Run and to the executor's Run
// methods.
type Context struct {
	Variables       map[string]value.Value
	StepSetupScript string
	StepSetupFunc   StepSetupFunc
}

// New builds an empty Context.
func New() *Context {
	return &Context{Variables: make(map[string]value.Value)}
}

// Get returns the variable with the given name, or value.None if absent.
func (c *Context) Get(name string) value.Value {
	if v, ok := c.Variables[name]; ok {
		return v
	}
	return value.None
}

// Set stores a variable. Setting value.None removes it, matching the
// export convention used when a script deletes a context variable.
func (c *Context) Set(name string, v value.Value) {
	if v.IsNone() {
		delete(c.Variables, name)
		return
	}
	c.Variables[name] = v
}

// Clone deep-copies the variable map so a run can work on an isolated
// snapshot (used by the executor to hand its worker goroutine a copy).
func (c *Context) Clone() *Context {
	cp := &Context{
		Variables:       make(map[string]value.Value, len(c.Variables)),
		StepSetupScript: c.StepSetupScript,
		StepSetupFunc:   c.StepSetupFunc,
	}
	for k, v := range c.Variables {
		cp.Variables[k] = v
	}
	return cp
}
