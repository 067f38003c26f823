package template

var allTopics = []int{2, 3, 4, 5, 6, 7, 8, 9}

// BuiltinTemplates is the starter multiplication word-problem set shipped
// with the engine. The `seed` command loads it into the catalog table; it
// also backs the in-memory catalog when no store is configured.
func BuiltinTemplates() []Template {
	return []Template{
		{
			ID:        "mult-baskets-easy",
			Category:  "grouping",
			Narrative: "There are {b} baskets, and each basket holds {a} {subject}. How many {subject} are there in all?",
			Hint:      "Count {a} {subject} for each basket: that is {a} × {b}.",
			Equation:  "{a} × {b} = ?",
			Variables: []VariableSpec{
				{Name: "a", Min: 2, Max: 9, Role: RoleTopicAnchor},
				{Name: "b", Min: 2, Max: 5, Role: RoleFactor},
			},
			Topics:     allTopics,
			Difficulty: 1,
			Quality:    0.92,
			Active:     true,
			VisualMetadata: map[string]any{
				"layout": "groups",
				"groups": map[string]any{"count": "{b}", "size": "{a}", "item": "{subject}"},
			},
		},
		{
			ID:        "mult-rows-easy",
			Category:  "arrays",
			Narrative: "A garden has {b} rows with {a} {subject} planted in each row. How many {subject} were planted?",
			Hint:      "An array with {b} rows of {a} is {a} × {b}.",
			Equation:  "{a} × {b} = ?",
			Variables: []VariableSpec{
				{Name: "a", Min: 2, Max: 9, Role: RoleTopicAnchor},
				{Name: "b", Min: 2, Max: 5, Role: RoleFactor},
			},
			Topics:     allTopics,
			Difficulty: 1,
			Quality:    0.88,
			Active:     true,
			VisualMetadata: map[string]any{
				"layout": "array",
				"rows":   "{b}",
				"cols":   "{a}",
			},
		},
		{
			ID:        "mult-sharing-easy",
			Category:  "grouping",
			Narrative: "{b} friends each bring {a} {subject} to the picnic. How many {subject} do they bring together?",
			Hint:      "Each of the {b} friends brings {a}: multiply {a} × {b}.",
			Equation:  "{a} × {b} = ?",
			Variables: []VariableSpec{
				{Name: "a", Min: 2, Max: 9, Role: RoleTopicAnchor},
				{Name: "b", Min: 2, Max: 6, Role: RoleFactor},
			},
			Topics:     allTopics,
			Difficulty: 1,
			Quality:    0.85,
			Active:     true,
		},
		{
			ID:        "mult-packs-medium",
			Category:  "grouping",
			Narrative: "A shop sells {subject} in packs of {a}. Maya buys {b} packs and her brother gives her {c} loose {subject}. The packs alone hold how many {subject}?",
			Hint:      "Ignore the loose ones: {b} packs of {a} is {a} × {b}.",
			Equation:  "{a} × {b} = ?",
			Variables: []VariableSpec{
				{Name: "a", Min: 2, Max: 9, Role: RoleTopicAnchor},
				{Name: "b", Min: 3, Max: 9, Role: RoleFactor},
				{Name: "c", Min: 1, Max: 4, Role: RoleAux},
			},
			Topics:     allTopics,
			Difficulty: 2,
			Quality:    0.9,
			Active:     true,
		},
		{
			ID:        "mult-shelves-medium",
			Category:  "arrays",
			Narrative: "A library cart has {b} shelves. Each shelf holds {a} books about {subject}. How many books fit on the cart?",
			Hint:      "{b} shelves of {a} books each: {a} × {b}.",
			Equation:  "{a} × {b} = ?",
			Variables: []VariableSpec{
				{Name: "a", Min: 2, Max: 9, Role: RoleTopicAnchor},
				{Name: "b", Min: 4, Max: 9, Role: RoleFactor},
			},
			Topics:     allTopics,
			Difficulty: 2,
			Quality:    0.84,
			Active:     true,
		},
		{
			ID:        "mult-tickets-hard",
			Category:  "money",
			Narrative: "Carnival tickets cost {a} coins each. Leo buys {b} tickets for his friends and has {c} coins left over. How many coins did the tickets cost?",
			Hint:      "{b} tickets at {a} coins each: the leftover {c} coins are a distraction.",
			Equation:  "{a} × {b} = ?",
			Variables: []VariableSpec{
				{Name: "a", Min: 2, Max: 9, Role: RoleTopicAnchor},
				{Name: "b", Min: 6, Max: 12, Role: RoleFactor},
				{Name: "c", Min: 2, Max: 9, Role: RoleAux},
			},
			Topics:     allTopics,
			Difficulty: 3,
			Quality:    0.87,
			Active:     true,
		},
		{
			ID:        "mult-crates-hard",
			Category:  "grouping",
			Narrative: "A truck carries {b} crates of {subject}. Every crate holds {a} {subject}, and {c} crates belong to another store. How many {subject} is the truck carrying in total?",
			Hint:      "All {b} crates ride on the truck, so the total is {a} × {b}.",
			Equation:  "{a} × {b} = ?",
			Variables: []VariableSpec{
				{Name: "a", Min: 2, Max: 9, Role: RoleTopicAnchor},
				{Name: "b", Min: 7, Max: 12, Role: RoleFactor},
				{Name: "c", Min: 1, Max: 3, Role: RoleAux},
			},
			Topics:     allTopics,
			Difficulty: 3,
			Quality:    0.8,
			Active:     true,
		},
	}
}
