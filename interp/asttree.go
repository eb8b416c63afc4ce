package interp

// Children enumerates a node's immediate child nodes, for the CLI's
// minimal AST dump (--ast). This is not a pretty-printer — it prints Go
// type names — since a fully engineered pretty-printer is out of scope.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c != nil {
			out = append(out, c)
		}
	}

	switch v := n.(type) {
	case *ListNode:
		for _, e := range v.Elements {
			add(e)
		}
	case *DictNode:
		for _, e := range v.Entries {
			add(e.Key)
			add(e.Value)
		}
	case *VarAssignNode:
		add(v.Value)
	case *BinOpNode:
		add(v.Left)
		add(v.Right)
	case *UnaryOpNode:
		add(v.Node)
	case *IfNode:
		for _, c := range v.Cases {
			add(c.Condition)
			add(c.Body)
		}
		add(v.Else)
	case *ForNode:
		add(v.Start)
		add(v.End)
		add(v.Step)
		add(v.Body)
	case *ForInNode:
		add(v.Iterable)
		add(v.Body)
	case *WhileNode:
		add(v.Condition)
		add(v.Body)
	case *FuncDefNode:
		for _, p := range v.Params {
			add(p.Default)
			add(p.Dynamic)
		}
		add(v.Body)
	case *CallNode:
		add(v.Callee)
		for _, a := range v.Args {
			add(a)
		}
	case *ReturnNode:
		add(v.Value)
	case *DoNode:
		add(v.Body)
	case *TryNode:
		add(v.Body)
		add(v.Handler)
	case *IndexGetNode:
		add(v.Collection)
		add(v.Index)
	case *IndexSetNode:
		add(v.Collection)
		add(v.Index)
		add(v.Value)
	case *DotGetNode:
		add(v.Target)
	case *DotSetNode:
		add(v.Target)
		add(v.Value)
	case *SwitchNode:
		add(v.Scrutinee)
		for _, c := range v.Cases {
			add(c.Value)
			add(c.Body)
		}
		add(v.Else)
	case *BlockNode:
		for _, s := range v.Statements {
			add(s)
		}
	}
	return out
}
