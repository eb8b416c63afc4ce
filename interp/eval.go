package interp

import (
	"context"
	"fmt"
)

// Evaluator walks an AST against a scope chain, threading a Signal through
// every visit. It is single-threaded and synchronous; the only concession
// to Go idiom beyond the reference design is a context.Context checked
// cooperatively once per loop iteration and once per call, so a host can
// cancel a runaway script without the evaluator ever spawning a goroutine.
type Evaluator struct {
	ctx    context.Context
	Loader *ModuleLoader
}

func NewEvaluator(ctx context.Context, loader *ModuleLoader) *Evaluator {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Evaluator{ctx: ctx, Loader: loader}
}

func (e *Evaluator) cancelled(span Span) (Signal, bool) {
	select {
	case <-e.ctx.Done():
		return errSignal(runtimeErr(span, "evaluation cancelled: "+e.ctx.Err().Error(), nil)), true
	default:
		return Signal{}, false
	}
}

// Eval dispatches on the concrete node type. trace is the current call
// chain (nil at top level), threaded into every RuntimeError raised so a
// traceback can be rendered outermost-first.
func (e *Evaluator) Eval(node Node, scope *Scope, trace *TraceFrame) Signal {
	switch n := node.(type) {
	case *NumberNode:
		return ok(NumberFromLit(n.Value))
	case *StringNode:
		return ok(String_{Value: n.Value})
	case *FStringNode:
		return e.evalFString(n, scope, trace)
	case *ListNode:
		return e.evalList(n, scope, trace)
	case *DictNode:
		return e.evalDict(n, scope, trace)
	case *VarAccessNode:
		return e.evalVarAccess(n, scope)
	case *VarAssignNode:
		return e.evalVarAssign(n, scope, trace)
	case *BinOpNode:
		return e.evalBinOp(n, scope, trace)
	case *UnaryOpNode:
		return e.evalUnaryOp(n, scope, trace)
	case *IfNode:
		return e.evalIf(n, scope, trace)
	case *ForNode:
		return e.evalFor(n, scope, trace)
	case *ForInNode:
		return e.evalForIn(n, scope, trace)
	case *WhileNode:
		return e.evalWhile(n, scope, trace)
	case *FuncDefNode:
		fn := &Function{Name: n.Name, Params: n.Params, Body: n.Body, AutoReturn: n.AutoReturn, Captured: scope, Span: n.Span()}
		if n.Name != "" {
			scope.Set(n.Name, fn, false)
		}
		return ok(fn)
	case *CallNode:
		return e.evalCall(n, scope, trace)
	case *ReturnNode:
		if n.Value == nil {
			return returnSignal(NullValue)
		}
		sig := e.Eval(n.Value, scope, trace)
		if sig.ShouldPropagate() {
			return sig
		}
		return returnSignal(sig.Value)
	case *ContinueNode:
		return continueSignal()
	case *BreakNode:
		return breakSignal()
	case *ImportNode:
		return e.evalImport(n, scope, trace)
	case *FromImportNode:
		return e.evalFromImport(n, scope, trace)
	case *DoNode:
		child := NewScope("<do>", scope)
		return e.Eval(n.Body, child, trace)
	case *TryNode:
		return e.evalTry(n, scope, trace)
	case *IndexGetNode:
		return e.evalIndexGet(n, scope, trace)
	case *IndexSetNode:
		return e.evalIndexSet(n, scope, trace)
	case *DotGetNode:
		return e.evalDotGet(n, scope, trace)
	case *DotSetNode:
		return e.evalDotSet(n, scope, trace)
	case *SwitchNode:
		return e.evalSwitch(n, scope, trace)
	case *StructNode:
		scope.DeclareStruct(n.Name, n.Fields)
		return ok(NullValue)
	case *StructCreationNode:
		return e.evalStructCreation(n, scope)
	case *BlockNode:
		return e.evalBlock(n, scope, trace)
	}
	return errSignal(runtimeErr(node.Span(), fmt.Sprintf("unhandled node type %T", node), trace))
}

func (e *Evaluator) evalBlock(n *BlockNode, scope *Scope, trace *TraceFrame) Signal {
	var last Value = NullValue
	for _, stmt := range n.Statements {
		if sig, cancelled := e.cancelled(n.Span()); cancelled {
			return sig
		}
		sig := e.Eval(stmt, scope, trace)
		if sig.ShouldPropagate() {
			return sig
		}
		last = sig.Value
	}
	return ok(last)
}

func (e *Evaluator) evalList(n *ListNode, scope *Scope, trace *TraceFrame) Signal {
	elems := make([]Value, 0, len(n.Elements))
	for _, el := range n.Elements {
		sig := e.Eval(el, scope, trace)
		if sig.ShouldPropagate() {
			return sig
		}
		elems = append(elems, sig.Value)
	}
	return ok(&List{Elements: elems})
}

func (e *Evaluator) evalDict(n *DictNode, scope *Scope, trace *TraceFrame) Signal {
	d := NewDict()
	for _, entry := range n.Entries {
		ksig := e.Eval(entry.Key, scope, trace)
		if ksig.ShouldPropagate() {
			return ksig
		}
		keyStr, ok := ksig.Value.(String_)
		if !ok {
			return errSignal(runtimeErr(entry.Key.Span(), "Dict keys must be strings", trace))
		}
		vsig := e.Eval(entry.Value, scope, trace)
		if vsig.ShouldPropagate() {
			return vsig
		}
		d.Set(keyStr.Value, vsig.Value)
	}
	return ok(d)
}

func (e *Evaluator) evalVarAccess(n *VarAccessNode, scope *Scope) Signal {
	if v, found := scope.Get(n.Name); found {
		return ok(v)
	}
	return errSignal(runtimeErr(n.Span(), fmt.Sprintf("'%s' is not defined", n.Name), nil))
}

func (e *Evaluator) evalVarAssign(n *VarAssignNode, scope *Scope, trace *TraceFrame) Signal {
	sig := e.Eval(n.Value, scope, trace)
	if sig.ShouldPropagate() {
		return sig
	}
	if !scope.Set(n.Name, sig.Value, n.Const) {
		return errSignal(runtimeErr(n.Span(), fmt.Sprintf("cannot reassign constant '%s'", n.Name), trace))
	}
	return ok(sig.Value)
}

func (e *Evaluator) evalBinOp(n *BinOpNode, scope *Scope, trace *TraceFrame) Signal {
	left := e.Eval(n.Left, scope, trace)
	if left.ShouldPropagate() {
		return left
	}
	right := e.Eval(n.Right, scope, trace)
	if right.ShouldPropagate() {
		return right
	}
	v, err := binOp(n.Op, n.OpLit, left.Value, right.Value, n.Span(), n.Right.Span())
	if err != nil {
		err.Trace = trace
		return errSignal(err)
	}
	return ok(v)
}

func (e *Evaluator) evalUnaryOp(n *UnaryOpNode, scope *Scope, trace *TraceFrame) Signal {
	sig := e.Eval(n.Node, scope, trace)
	if sig.ShouldPropagate() {
		return sig
	}
	v, err := unaryOp(n.Op, n.OpLit, sig.Value, n.Span())
	if err != nil {
		err.Trace = trace
		return errSignal(err)
	}
	return ok(v)
}

func (e *Evaluator) evalIf(n *IfNode, scope *Scope, trace *TraceFrame) Signal {
	for _, c := range n.Cases {
		condSig := e.Eval(c.Condition, scope, trace)
		if condSig.ShouldPropagate() {
			return condSig
		}
		if condSig.Value.IsTruthy() {
			// if-bodies share the enclosing scope: assignments leak out.
			if sig := e.Eval(c.Body, scope, trace); sig.ShouldPropagate() {
				return sig
			}
			return ok(NullValue)
		}
	}
	if n.Else != nil {
		if sig := e.Eval(n.Else, scope, trace); sig.ShouldPropagate() {
			return sig
		}
	}
	return ok(NullValue)
}

func (e *Evaluator) evalFor(n *ForNode, scope *Scope, trace *TraceFrame) Signal {
	startSig := e.Eval(n.Start, scope, trace)
	if startSig.ShouldPropagate() {
		return startSig
	}
	endSig := e.Eval(n.End, scope, trace)
	if endSig.ShouldPropagate() {
		return endSig
	}
	startN, ok1 := startSig.Value.(Number)
	endN, ok2 := endSig.Value.(Number)
	if !ok1 || !ok2 {
		return errSignal(runtimeErr(n.Span(), "for-loop bounds must be numbers", trace))
	}

	step := 1.0
	intStep := true
	if n.Step != nil {
		stepSig := e.Eval(n.Step, scope, trace)
		if stepSig.ShouldPropagate() {
			return stepSig
		}
		stepN, okStep := stepSig.Value.(Number)
		if !okStep {
			return errSignal(runtimeErr(n.Step.Span(), "step must be a number", trace))
		}
		step = stepN.F()
		intStep = !stepN.IsFloat
	}
	if step == 0 {
		return errSignal(runtimeErr(n.Span(), "for-loop step cannot be 0", trace))
	}

	intLoop := intStep && !startN.IsFloat
	i := startN.F()
	for (step > 0 && i < endN.F()) || (step < 0 && i > endN.F()) {
		if sig, cancelled := e.cancelled(n.Span()); cancelled {
			return sig
		}
		var counter Value = Float(i)
		if intLoop {
			counter = Int(int64(i))
		}
		scope.Set(n.VarName, counter, false)
		sig := e.Eval(n.Body, scope, trace)
		if sig.ShouldBreak {
			break
		}
		if sig.ShouldContinue {
			i += step
			continue
		}
		if sig.ShouldPropagate() {
			return sig
		}
		i += step
	}
	return ok(NullValue)
}

func (e *Evaluator) evalForIn(n *ForInNode, scope *Scope, trace *TraceFrame) Signal {
	iterSig := e.Eval(n.Iterable, scope, trace)
	if iterSig.ShouldPropagate() {
		return iterSig
	}
	iter, err := iterate(iterSig.Value, n.Iterable.Span())
	if err != nil {
		err.Trace = trace
		return errSignal(err)
	}

	for {
		if sig, cancelled := e.cancelled(n.Span()); cancelled {
			return sig
		}
		v, more := iter.Next()
		if !more {
			break
		}
		scope.Set(n.VarName, v, false)
		sig := e.Eval(n.Body, scope, trace)
		if sig.ShouldBreak {
			break
		}
		if sig.ShouldContinue {
			continue
		}
		if sig.ShouldPropagate() {
			return sig
		}
	}
	return ok(NullValue)
}

func (e *Evaluator) evalWhile(n *WhileNode, scope *Scope, trace *TraceFrame) Signal {
	for {
		if sig, cancelled := e.cancelled(n.Span()); cancelled {
			return sig
		}
		condSig := e.Eval(n.Condition, scope, trace)
		if condSig.ShouldPropagate() {
			return condSig
		}
		if !condSig.Value.IsTruthy() {
			break
		}
		sig := e.Eval(n.Body, scope, trace)
		if sig.ShouldBreak {
			break
		}
		if sig.ShouldContinue {
			continue
		}
		if sig.ShouldPropagate() {
			return sig
		}
	}
	return ok(NullValue)
}

func (e *Evaluator) evalCall(n *CallNode, scope *Scope, trace *TraceFrame) Signal {
	calleeSig := e.Eval(n.Callee, scope, trace)
	if calleeSig.ShouldPropagate() {
		return calleeSig
	}

	args := make([]Value, 0, len(n.Args))
	for _, a := range n.Args {
		sig := e.Eval(a, scope, trace)
		if sig.ShouldPropagate() {
			return sig
		}
		args = append(args, sig.Value)
	}

	if sig, cancelled := e.cancelled(n.Span()); cancelled {
		return sig
	}

	switch fn := calleeSig.Value.(type) {
	case *Function:
		return e.callFunction(fn, args, n.Span(), trace)
	case *BuiltIn:
		return e.callBuiltIn(fn, args, n.Span(), scope, trace)
	case *HostCallable:
		return e.callHost(fn, args, n.Span(), trace)
	}
	return errSignal(runtimeErr(n.Callee.Span(), fmt.Sprintf("%s is not callable", calleeSig.Value.Type()), trace))
}

func bindParams(callSpan Span, fnSpan Span, displayName string, params []Param, args []Value, call *Evaluator, callerScope *Scope) (*Scope, *Diagnostic) {
	if len(args) > len(params) {
		return nil, runtimeErr(callSpan, fmt.Sprintf("too many arguments passed into '%s'", displayName), nil)
	}
	child := NewScope(displayName, callerScope)
	for i, param := range params {
		var val Value
		if i < len(args) {
			val = args[i]
		} else if param.Default == optionalArg {
			val = nil
		} else if param.Default != nil {
			sig := call.Eval(param.Default, child, nil)
			if sig.Err != nil {
				return nil, sig.Err
			}
			val = sig.Value
		} else {
			return nil, runtimeErr(callSpan, fmt.Sprintf("too few arguments passed into '%s'", displayName), nil)
		}

		if param.Dynamic != nil {
			dynScope := NewScope("<dynamic>", child)
			dynScope.Set("$", val, false)
			sig := call.Eval(param.Dynamic, dynScope, nil)
			if sig.Err != nil {
				return nil, sig.Err
			}
			val = sig.Value
		}

		child.Set(param.Name, val, false)
	}
	return child, nil
}

// callFunction creates a call frame whose parent is the function's
// *captured* scope — never the caller's scope — per the closure-capture
// invariant.
func (e *Evaluator) callFunction(fn *Function, args []Value, callSpan Span, trace *TraceFrame) Signal {
	child, err := bindParams(callSpan, fn.Span, fn.displayName(), fn.Params, args, e, fn.Captured)
	if err != nil {
		err.Trace = trace
		return errSignal(err)
	}

	frame := &TraceFrame{DisplayName: fn.displayName(), ParentEntryPos: callSpan.Start, Parent: trace}
	sig := e.Eval(fn.Body, child, frame)
	if sig.Err != nil {
		return sig
	}
	if sig.HasReturn {
		return ok(sig.ReturnValue)
	}
	if sig.ShouldBreak || sig.ShouldContinue {
		return errSignal(runtimeErr(callSpan, "'break'/'continue' outside loop", frame))
	}
	if fn.AutoReturn {
		return ok(sig.Value)
	}
	return ok(NullValue)
}

func (e *Evaluator) callBuiltIn(b *BuiltIn, args []Value, callSpan Span, scope *Scope, trace *TraceFrame) Signal {
	child, err := bindParams(callSpan, callSpan, b.Name, b.Params, args, e, scope)
	if err != nil {
		err.Trace = trace
		return errSignal(err)
	}
	bound := make([]Value, len(b.Params))
	for i, p := range b.Params {
		v, _ := child.Get(p.Name)
		bound[i] = v
	}
	return b.Fn(e, scope, callSpan, bound)
}

func (e *Evaluator) callHost(h *HostCallable, args []Value, callSpan Span, trace *TraceFrame) Signal {
	hostArgs := make([]any, len(args))
	for i, a := range args {
		hostArgs[i] = valueToHost(a)
	}
	result, hostErr := func() (ret any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in host function '%s': %v", h.Name, r)
			}
		}()
		return h.Fn(hostArgs)
	}()
	if hostErr != nil {
		return errSignal(runtimeErr(callSpan, hostErr.Error(), trace))
	}
	return ok(hostToValue(result))
}

func (e *Evaluator) evalImport(n *ImportNode, scope *Scope, trace *TraceFrame) Signal {
	if n.LegacyStr {
		return e.evalLegacyImport(n, scope, trace)
	}
	mod, err := e.Loader.Load(e, n.Path, n.Span())
	if err != nil {
		err.Trace = trace
		return errSignal(err)
	}
	attachModule(scope, n.Path, mod)
	return ok(NullValue)
}

// attachModule creates shell Module values for every dotted-path segment
// but the last, then binds the real module at the leaf.
func attachModule(scope *Scope, path string, mod *Module) {
	parts := splitDotted(path)
	if len(parts) == 1 {
		scope.Set(parts[0], mod, false)
		return
	}
	root, existing := scope.Get(parts[0])
	var rootMod *Module
	if m, ok := existing.(*Module); ok {
		rootMod = m
	} else {
		rootMod = NewModule(parts[0])
		scope.Set(parts[0], rootMod, false)
	}
	cur := rootMod
	for _, part := range parts[1 : len(parts)-1] {
		next, ok := cur.Get(part)
		nextMod, isMod := next.(*Module)
		if !ok || !isMod {
			nextMod = NewModule(part)
			cur.Set(part, nextMod)
		}
		cur = nextMod
	}
	cur.Set(parts[len(parts)-1], mod)
	_ = root
}

func splitDotted(path string) []string {
	var parts []string
	start := 0
	for i, c := range path {
		if c == '.' {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	parts = append(parts, path[start:])
	return parts
}

// evalLegacyImport reads the quoted file path, evaluating it directly into
// the current scope (no namespace isolation) — deliberately not
// replicating the original implementation's working-directory change.
func (e *Evaluator) evalLegacyImport(n *ImportNode, scope *Scope, trace *TraceFrame) Signal {
	src, err := e.Loader.ReadLegacyFile(n.Path, n.Span())
	if err != nil {
		err.Trace = trace
		return errSignal(err)
	}
	root, parseErr := ParseSource(n.Path, src)
	if parseErr != nil {
		return errSignal(parseErr)
	}
	return e.Eval(root, scope, trace)
}

func (e *Evaluator) evalFromImport(n *FromImportNode, scope *Scope, trace *TraceFrame) Signal {
	mod, err := e.Loader.Load(e, n.Path, n.Span())
	if err != nil {
		err.Trace = trace
		return errSignal(err)
	}
	for _, name := range n.Names {
		v, found := mod.Get(name)
		if !found {
			return errSignal(runtimeErr(n.Span(), fmt.Sprintf("'%s' is not exported by module '%s'", name, n.Path), trace))
		}
		scope.Set(name, v, false)
	}
	return ok(NullValue)
}

func (e *Evaluator) evalTry(n *TryNode, scope *Scope, trace *TraceFrame) Signal {
	sig := e.Eval(n.Body, scope, trace)
	if sig.Err == nil {
		return sig
	}
	// return/break/continue are not caught — only Err triggers the handler,
	// and sig.Err is the only non-value signal set here.
	if n.BindName != "" {
		scope.Set(n.BindName, ErrorValue{Diag: sig.Err}, false)
	}
	handlerSig := e.Eval(n.Handler, scope, trace)
	if handlerSig.Err != nil {
		chained := tryErr(handlerSig.Err.Span, handlerSig.Err.Details, trace, sig.Err)
		chained.Hint = handlerSig.Err.Hint
		return errSignal(chained)
	}
	return handlerSig
}

func (e *Evaluator) evalIndexGet(n *IndexGetNode, scope *Scope, trace *TraceFrame) Signal {
	collSig := e.Eval(n.Collection, scope, trace)
	if collSig.ShouldPropagate() {
		return collSig
	}
	idxSig := e.Eval(n.Index, scope, trace)
	if idxSig.ShouldPropagate() {
		return idxSig
	}
	v, err := getIndex(collSig.Value, idxSig.Value, n.Span())
	if err != nil {
		err.Trace = trace
		return errSignal(err)
	}
	return ok(v)
}

func (e *Evaluator) evalIndexSet(n *IndexSetNode, scope *Scope, trace *TraceFrame) Signal {
	collSig := e.Eval(n.Collection, scope, trace)
	if collSig.ShouldPropagate() {
		return collSig
	}
	idxSig := e.Eval(n.Index, scope, trace)
	if idxSig.ShouldPropagate() {
		return idxSig
	}
	valSig := e.Eval(n.Value, scope, trace)
	if valSig.ShouldPropagate() {
		return valSig
	}
	if err := setIndex(collSig.Value, idxSig.Value, valSig.Value, n.Span()); err != nil {
		err.Trace = trace
		return errSignal(err)
	}
	return ok(valSig.Value)
}

func (e *Evaluator) evalDotGet(n *DotGetNode, scope *Scope, trace *TraceFrame) Signal {
	targetSig := e.Eval(n.Target, scope, trace)
	if targetSig.ShouldPropagate() {
		return targetSig
	}
	switch t := targetSig.Value.(type) {
	case *StructInstance:
		v, found := t.Fields[n.Field]
		if !found {
			return errSignal(runtimeErr(n.Span(), fmt.Sprintf("'%s' has no field '%s'", t.StructName, n.Field), trace))
		}
		return ok(v)
	case *Module:
		v, found := t.Get(n.Field)
		if !found {
			return errSignal(runtimeErr(n.Span(), fmt.Sprintf("module '%s' has no member '%s'", t.Name, n.Field), trace))
		}
		return ok(v)
	}
	return errSignal(runtimeErr(n.Span(), fmt.Sprintf("%s has no field '%s'", targetSig.Value.Type(), n.Field), trace))
}

func (e *Evaluator) evalDotSet(n *DotSetNode, scope *Scope, trace *TraceFrame) Signal {
	targetSig := e.Eval(n.Target, scope, trace)
	if targetSig.ShouldPropagate() {
		return targetSig
	}
	valSig := e.Eval(n.Value, scope, trace)
	if valSig.ShouldPropagate() {
		return valSig
	}
	switch t := targetSig.Value.(type) {
	case *StructInstance:
		if _, known := t.Fields[n.Field]; !known {
			return errSignal(runtimeErr(n.Span(), fmt.Sprintf("'%s' has no field '%s'", t.StructName, n.Field), trace))
		}
		t.Fields[n.Field] = valSig.Value
		return ok(valSig.Value)
	case *Module:
		t.Set(n.Field, valSig.Value)
		return ok(valSig.Value)
	}
	return errSignal(runtimeErr(n.Span(), fmt.Sprintf("cannot set field on %s", targetSig.Value.Type()), trace))
}

func (e *Evaluator) evalSwitch(n *SwitchNode, scope *Scope, trace *TraceFrame) Signal {
	scrutSig := e.Eval(n.Scrutinee, scope, trace)
	if scrutSig.ShouldPropagate() {
		return scrutSig
	}
	for _, c := range n.Cases {
		caseSig := e.Eval(c.Value, scope, trace)
		if caseSig.ShouldPropagate() {
			return caseSig
		}
		eq, err := binOp(EE, "", scrutSig.Value, caseSig.Value, n.Span(), c.Value.Span())
		if err != nil {
			err.Trace = trace
			return errSignal(err)
		}
		if eq.IsTruthy() {
			return e.Eval(c.Body, scope, trace)
		}
	}
	if n.Else != nil {
		return e.Eval(n.Else, scope, trace)
	}
	return ok(NullValue)
}

func (e *Evaluator) evalStructCreation(n *StructCreationNode, scope *Scope) Signal {
	fields, found := scope.LookupStruct(n.Name)
	if !found {
		return errSignal(runtimeErr(n.Span(), fmt.Sprintf("struct '%s' is not defined", n.Name), nil))
	}
	inst := &StructInstance{StructName: n.Name, Fields: make(map[string]Value, len(fields))}
	for _, f := range fields {
		inst.Fields[f] = NullValue
	}
	return ok(inst)
}
