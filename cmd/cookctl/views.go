package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/cookfile-viewer/backend/internal/models"
)

// terminalPage prints every view update of a workspace.
type terminalPage struct {
	w io.Writer
}

func (p terminalPage) InsertCard(c models.Comment) {
	pterm.Success.Printfln("comment %s added at %s", c.ID, c.DateTime)
	pterm.Println(c.Text)
}

func (p terminalPage) ClearInput() {}

func (p terminalPage) ShowEditor(id, text string) {
	pterm.Info.Printfln("editing %s", id)
	pterm.Println(text)
}

func (p terminalPage) ShowBody(id, text string) {
	pterm.Success.Printfln("comment %s saved", id)
	pterm.Println(text)
}

func (p terminalPage) SetHeader(id string, h models.CommentHeader) {
	if badge := h.Badge(); badge != "" {
		pterm.Info.Printfln("%s  %s  (%s)", id, h.DateTime, badge)
	}
}

func (p terminalPage) RemoveCard(id string) {
	pterm.Success.Printfln("comment %s deleted", id)
}

func (p terminalPage) ShowCandidates(commentID string, list []models.MediaCandidate) {
	data := [][]string{{"ID", "FILE", "STATE"}}
	for _, c := range list {
		data = append(data, []string{c.ID, c.Filename, string(c.State)})
	}
	printTable(p.w, data)
}

func (p terminalPage) SetSelected(commentID, filename string, state models.SelectState) {
	pterm.Info.Printfln("%s on %s: %s", filename, commentID, state)
}

func (p terminalPage) SetThumbnails(commentID string, thumbs []models.ImageRef) {
	if len(thumbs) == 0 {
		pterm.Info.Printfln("%s has no media", commentID)
		return
	}
	data := [][]string{{"FILE", "THUMBNAIL"}}
	for _, t := range thumbs {
		data = append(data, []string{t.Filename, t.URL})
	}
	printTable(p.w, data)
}

func (p terminalPage) SetRemovalList(filenames []string) {
	if len(filenames) > 0 {
		pterm.Debug.Printfln("marked: %s", strings.Join(filenames, ", "))
	}
}

func (p terminalPage) ShowImage(ref models.ImageRef) {
	pterm.Info.Printfln("%s (%s)", ref.Filename, ref.CommentID)
	fmt.Fprintln(p.w, ref.URL)
}

func (p terminalPage) Confirm(field string) {
	pterm.Success.Printfln("%s saved", field)
}

func (p terminalPage) Notify(message string) {
	pterm.Error.Println(message)
}

func printTable(w io.Writer, data [][]string) {
	table := pterm.DefaultTable
	table.Boxed = true

	str, err := table.WithHasHeader().WithData(data).Srender()
	if err != nil {
		pterm.Error.Printfln("Failed to output table: %s", err.Error())
		return
	}

	fmt.Fprintln(w, str)
}

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
}
