package main

import (
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/disiqueira/gotree/v3"
	"github.com/olekukonko/tablewriter"

	"github.com/starford/lectern/internal/models"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	return table
}

func renderSources(w io.Writer, sources []models.LibrarySource) {
	table := newTable(w, "Name", "Path")
	for _, s := range sources {
		table.Append([]string{s.Name, s.Path})
	}
	table.SetFooter([]string{"", fmt.Sprintf("%d sources", len(sources))})
	table.Render()
}

func renderExport(w io.Writer, res *models.ExportResult) {
	if res.Status == models.StatusCancelled {
		fmt.Fprintln(w, "export cancelled")
		return
	}
	fmt.Fprintf(w, "exported %d sources, %d entries to %s\n", deref(res.SourceCount), deref(res.EntryCount), res.Path)
}

func renderImport(w io.Writer, res *models.ImportResult) {
	if res.Status == models.StatusCancelled {
		fmt.Fprintln(w, "import cancelled")
		return
	}
	table := newTable(w, "Source", "Status", "Resolved", "Message")
	for _, r := range res.Results {
		table.Append([]string{r.SourceName, r.Status, r.ResolvedPath, r.Message})
	}
	table.SetFooter([]string{
		"",
		fmt.Sprintf("added %d", deref(res.Added)),
		fmt.Sprintf("existing %d", deref(res.Existing)),
		fmt.Sprintf("missing %d", deref(res.Missing)),
	})
	table.Render()
}

func renderCorpusInfo(w io.Writer, info map[string]map[string]models.CorpusTierInfo) {
	families := make([]string, 0, len(info))
	for f := range info {
		families = append(families, f)
	}
	sort.Strings(families)

	table := newTable(w, "Family", "Tier", "Available", "Articles")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_RIGHT})
	for _, f := range families {
		tiers := make([]string, 0, len(info[f]))
		for t := range info[f] {
			tiers = append(tiers, t)
		}
		sort.Strings(tiers)
		for _, t := range tiers {
			ti := info[f][t]
			avail := "no"
			if ti.Available {
				avail = "yes"
			}
			table.Append([]string{f, t, avail, fmt.Sprintf("%d", ti.TotalArticles)})
		}
	}
	table.Render()
}

// bookTree renders scan results grouped by their slash-separated parent dir.
type bookTree struct {
	root gotree.Tree
	dirs map[string]gotree.Tree
}

func newBookTree(label string) bookTree {
	return bookTree{root: gotree.New(label), dirs: make(map[string]gotree.Tree)}
}

func (t bookTree) dir(p string) gotree.Tree {
	if p == "" || p == "." {
		return t.root
	}
	d, ok := t.dirs[p]
	if !ok {
		d = t.dir(path.Dir(p)).Add(path.Base(p))
		t.dirs[p] = d
	}
	return d
}

func (t bookTree) insert(item models.LibraryItem) {
	label := item.Name
	if item.IsFrontmatter {
		label = "* " + label
	}
	t.dir(item.ParentDir).Add(label)
}

func renderTree(label string, items []models.LibraryItem) string {
	t := newBookTree(label)
	for _, item := range items {
		t.insert(item)
	}
	return t.root.Print()
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
