package schema

// Fragments shared by the package tests.

func rootFragment() Fragment {
	return FragmentFunc(func() *Node {
		return Array("",
			Boolean("true_or_false").Default(false).Info("True or false."),
			Integer("positive_number").Default(100).Min(0).Info("A number between 0 and 100."),
			Scalar("this_is_a_string").Info("A string"),
			Scalar("another_string"),
		)
	})
}

func branch2Fragment() Fragment {
	return FragmentFunc(func() *Node {
		return Array("branch2",
			Boolean("boolean").Default(false).Info("yet another boolean."),
			Integer("negative_number").Default(-10).Max(0).Info("A negative number."),
			Scalar("yet_another_string"),
		)
	})
}

func subbranch2Fragment() Fragment {
	return FragmentFunc(func() *Node {
		return Array("branch/subbranch2",
			Boolean("boolean").Default(false).Info("yet another boolean."),
			Integer("negative_number").Default(-10).Max(0).Info("A negative number."),
			Scalar("yet_another_string"),
		)
	})
}

func subbranchFragment() Fragment {
	return FragmentFunc(func() *Node {
		return Array("branch",
			Array("subbranch",
				Boolean("new_in_subbranch").Default(false).Info("yet again another boolean."),
				Integer("negative_number"),
			),
		)
	})
}

// typeMismatchFragment redefines branch/subbranch as a boolean leaf.
func typeMismatchFragment() Fragment {
	return FragmentFunc(func() *Node {
		return Array("branch", Boolean("subbranch"))
	})
}

func emptyFragment() Fragment {
	return FragmentFunc(func() *Node { return nil })
}
