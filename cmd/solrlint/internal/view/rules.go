package view

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"
)

type RulesView interface {
	Render(tables []RulesTable)
}

// RulesTable is one named rule table.
type RulesTable struct {
	Name    string   `json:"name"`
	Entries []string `json:"entries"`
}

type rulesHumanView struct {
	*HumanView
}

func (v *rulesHumanView) Render(tables []RulesTable) {
	headerFmt := color.New(color.FgGreen, color.Bold).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("Table", "Count", "Entries")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt).WithWriter(v.Writer)
	for _, t := range tables {
		tbl.AddRow(t.Name, strconv.Itoa(len(t.Entries)), strings.Join(t.Entries, ", "))
	}
	tbl.Print()
}

type rulesJSONView struct {
	*JSONView
}

func (v *rulesJSONView) Render(tables []RulesTable) {
	out := struct {
		Type   string       `json:"type"`
		Tables []RulesTable `json:"tables"`
	}{Type: "rules", Tables: tables}

	if data, err := json.Marshal(out); err == nil {
		v.Println(string(data))
	}
}

func NewRulesView(v Viewer) RulesView {
	switch vt := v.(type) {
	case *HumanView:
		return &rulesHumanView{HumanView: vt}
	case *JSONView:
		return &rulesJSONView{JSONView: vt}
	default:
		panic("unknown view type")
	}
}
