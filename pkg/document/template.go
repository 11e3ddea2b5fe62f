package document

import (
	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/tree"
)

// DefaultTitle is the title of a fresh project.
const DefaultTitle = "My first page"

// TemplatePage returns the page a new or reset project starts from: a
// white card holding a heading, a name input and a button that fills it.
func TemplatePage() core.Page {
	return core.Page{
		Title: DefaultTitle,
		Root: &core.Node{
			ID:    core.RootID,
			Type:  core.TypePage,
			Name:  "Root page",
			Props: core.Props{},
			Style: core.Style{"padding": "20px", "backgroundColor": "#f0f2f5", "minHeight": "100vh"},
			Children: []*core.Node{
				{
					ID:    "1",
					Type:  core.TypeContainer,
					Name:  "White card",
					Props: core.Props{},
					Style: core.Style{
						"padding":         "20px",
						"backgroundColor": "#fff",
						"minHeight":       "300px",
						"border":          "1px solid #d9d9d9",
						"borderRadius":    "4px",
					},
					Children: []*core.Node{
						{
							ID:    "2",
							Type:  core.TypeText,
							Name:  "Heading",
							Props: core.Props{"text": "Hello User!", "fontSize": "24px", "color": "#1890ff"},
						},
						{
							ID:    "input_name",
							Type:  core.TypeInput,
							Name:  "Name input",
							Props: core.Props{"placeholder": "Waiting for data..."},
							Style: core.Style{"marginTop": "20px", "display": "block", "width": "300px"},
						},
						{
							ID:    "3",
							Type:  core.TypeButton,
							Name:  "Submit button",
							Props: core.Props{"type": "primary", "children": "Fill in data"},
							Style: core.Style{"marginTop": "20px"},
							Events: core.Events{
								"onClick": {
									{Type: core.ActionSetValue, Config: map[string]any{"targetId": "input_name", "value": "User 2025"}},
								},
							},
						},
					},
				},
			},
		},
	}
}

// Template returns a document built from TemplatePage.
func Template() Document {
	p := TemplatePage()
	return Document{
		Title:     p.Title,
		Root:      p.Root,
		Variables: map[string]any{},
		index:     tree.Build(p.Root),
	}
}

// Empty returns a document whose root page has no children.
func Empty(title string) Document {
	root := &core.Node{ID: core.RootID, Type: core.TypePage, Name: "Root page", Props: core.Props{}, Children: []*core.Node{}}
	return Document{
		Title:     title,
		Root:      root,
		Variables: map[string]any{},
		index:     tree.Build(root),
	}
}
