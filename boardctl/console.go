package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/term"

	"github.com/thunderboard/thunderboard/board"
)

const defaultConsoleWidth = 80

// prints board changes as lines. the renderer keeps its own copy of what is
// shown per board, keyed by object id, and never reads engine state back
// except through the view states it is handed.
type ConsoleRenderer struct {
	out   io.Writer
	width int

	active board.BoardName
	unread map[board.BoardName]int
	// board -> object ids, front first
	boards map[board.BoardName][]board.ObjectId
	// the last view handed for each object
	views map[board.ObjectId]*board.ViewState

	onList func([]board.ObjectSummary)
}

func NewConsoleRenderer(out io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{
		out:    out,
		width:  consoleWidth(out),
		unread: map[board.BoardName]int{},
		boards: map[board.BoardName][]board.ObjectId{},
		views:  map[board.ObjectId]*board.ViewState{},
	}
}

func consoleWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && 0 < width {
			return width
		}
	}
	return defaultConsoleWidth
}

// called with each catalog received
func (self *ConsoleRenderer) OnList(onList func([]board.ObjectSummary)) {
	self.onList = onList
}

func (self *ConsoleRenderer) BoardCreated(name board.BoardName) {
	self.boards[name] = []board.ObjectId{}
	self.printf("+ board %s", name)
}

func (self *ConsoleRenderer) BoardClosed(name board.BoardName) {
	delete(self.boards, name)
	delete(self.unread, name)
	self.printf("- board %s", name)
}

func (self *ConsoleRenderer) BoardActivated(name board.BoardName) {
	self.active = name
	self.printf("* board %s", name)
}

func (self *ConsoleRenderer) UnreadChanged(name board.BoardName, count int) {
	self.unread[name] = count
	if 0 < count {
		self.printf("  board %s (%d)", name, count)
	}
}

func (self *ConsoleRenderer) ObjectPlaced(view *board.ViewState, index int) {
	id := view.Id()
	for name, ids := range self.boards {
		if i := slices.Index(ids, id); 0 <= i {
			self.boards[name] = slices.Delete(ids, i, i+1)
		}
	}
	name := view.Object.Board
	ids := self.boards[name]
	self.boards[name] = slices.Insert(ids, min(index, len(ids)), id)
	self.views[id] = view
}

func (self *ConsoleRenderer) ObjectRemoved(id board.ObjectId) {
	for name, ids := range self.boards {
		if i := slices.Index(ids, id); 0 <= i {
			self.boards[name] = slices.Delete(ids, i, i+1)
		}
	}
	delete(self.views, id)
	self.printf("- %s", id)
}

func (self *ConsoleRenderer) ObjectRendered(view *board.ViewState) {
	self.views[view.Id()] = view
	if view.Object.Board != self.active {
		return
	}
	for _, line := range self.Lines(view) {
		self.printf("%s", line)
	}
}

func (self *ConsoleRenderer) SubscriptionListReceived(entries []board.ObjectSummary) {
	if self.onList != nil {
		self.onList(entries)
		return
	}
	for _, line := range CatalogLines(entries) {
		self.printf("%s", line)
	}
}

// the rendered form of one object
func (self *ConsoleRenderer) Lines(view *board.ViewState) []string {
	object := view.Object
	indicator := "stopped"
	if object.Active {
		indicator = "live"
	}
	title := object.Name
	if title == "" {
		title = string(object.Id)
	}
	lines := []string{
		self.truncate(fmt.Sprintf("[%s] %s (%s) %s", object.Board, title, object.Type, indicator)),
	}

	switch content := view.Content.(type) {
	case *board.TextView:
		end := min(len(content.Lines), content.ScrollTop+content.Height)
		for _, line := range content.Lines[content.ScrollTop:end] {
			lines = append(lines, self.truncate("  "+line))
		}
	case *board.ImageView:
		lines = append(lines, fmt.Sprintf("  image %d bytes height=%d", len(content.Source), content.Height))
	case *board.DialogView:
		for _, group := range content.Groups {
			if group.Name != "" {
				lines = append(lines, self.truncate("  "+group.Name))
			}
			for _, name := range group.Controls {
				lines = append(lines, self.truncate("    "+controlLine(content.Controls[name])))
			}
		}
	case nil:
	default:
		panic(fmt.Errorf("no console form for %T", content))
	}
	return lines
}

func controlLine(control *board.DialogControl) string {
	state := ""
	if !control.Enabled && control.Type != board.DialogFieldLabel {
		state = " (disabled)"
	}
	switch control.Type {
	case board.DialogFieldLabel:
		return control.Text
	case board.DialogFieldInput:
		return fmt.Sprintf("%s: [%s]%s", control.Text, control.Value, state)
	case board.DialogFieldButton:
		return fmt.Sprintf("<%s>%s", control.Text, state)
	default:
		panic(fmt.Errorf("no console form for field %s type %q", control.Name, control.Type))
	}
}

// one line per board, in name order, with the unread badge
func (self *ConsoleRenderer) Summary() []string {
	names := maps.Keys(self.boards)
	slices.Sort(names)
	lines := []string{}
	for _, name := range names {
		marker := " "
		if name == self.active {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s %d objects", marker, name, len(self.boards[name]))
		if count := self.unread[name]; 0 < count {
			line += fmt.Sprintf(" (%d)", count)
		}
		lines = append(lines, line)
	}
	return lines
}

// cuts on runes, never inside a multi-byte character
func (self *ConsoleRenderer) truncate(line string) string {
	if utf8.RuneCountInString(line) <= self.width {
		return line
	}
	return string([]rune(line)[:self.width])
}

func (self *ConsoleRenderer) printf(format string, a ...any) {
	fmt.Fprintf(self.out, format+"\n", a...)
}

func CatalogLines(entries []board.ObjectSummary) []string {
	lines := []string{}
	for _, entry := range entries {
		subscribed := " "
		if entry.Subscribed {
			subscribed = "x"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s %s (%s)", subscribed, entry.Id, entry.Name, entry.Board))
	}
	return lines
}

// maps one console command line to an interaction event
//
//	activate <board>
//	move <object> <board>
//	close <object>
//	close-board <board>
//	subscribe <object>
//	unsubscribe <object>
//	select <object>... (subscription edit, unnamed tracked objects are deselected)
//	boards
//	list
//	clean-inactive
//	scroll <object> <top>
//	resize <object> <height>
//	submit <object> <field> [value...]
//	leave
func ParseCommand(line string, renderer *ConsoleRenderer) (board.Event, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	command, args := fields[0], fields[1:]

	requireArgs := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%s needs %d arguments", command, n)
		}
		return nil
	}
	requireInt := func(s string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number", command, s)
		}
		return v, nil
	}

	switch command {
	case "activate":
		if err := requireArgs(1); err != nil {
			return nil, err
		}
		return &board.ActivateBoardEvent{Board: board.BoardName(args[0])}, nil
	case "move":
		if err := requireArgs(2); err != nil {
			return nil, err
		}
		return &board.MoveObjectEvent{ObjectId: board.ObjectId(args[0]), Board: board.BoardName(args[1])}, nil
	case "close":
		if err := requireArgs(1); err != nil {
			return nil, err
		}
		return &board.CloseObjectEvent{ObjectId: board.ObjectId(args[0])}, nil
	case "close-board":
		if err := requireArgs(1); err != nil {
			return nil, err
		}
		return &board.CloseBoardEvent{Board: board.BoardName(args[0])}, nil
	case "subscribe":
		if err := requireArgs(1); err != nil {
			return nil, err
		}
		return &board.ApplySubscriptionEditEvent{
			Selection: map[board.ObjectId]bool{board.ObjectId(args[0]): true},
		}, nil
	case "unsubscribe":
		if err := requireArgs(1); err != nil {
			return nil, err
		}
		return &board.ApplySubscriptionEditEvent{
			Selection: map[board.ObjectId]bool{board.ObjectId(args[0]): false},
		}, nil
	case "select":
		selected := []board.ObjectId{}
		for _, arg := range args {
			selected = append(selected, board.ObjectId(arg))
		}
		return &SelectEvent{Selected: selected}, nil
	case "boards":
		return &SummaryEvent{renderer: renderer}, nil
	case "list":
		return &board.RequestListEvent{}, nil
	case "clean-inactive":
		return &board.CleanInactiveEvent{}, nil
	case "scroll":
		if err := requireArgs(2); err != nil {
			return nil, err
		}
		top, err := requireInt(args[1])
		if err != nil {
			return nil, err
		}
		return &board.ScrollTextEvent{ObjectId: board.ObjectId(args[0]), Top: top}, nil
	case "resize":
		if err := requireArgs(2); err != nil {
			return nil, err
		}
		height, err := requireInt(args[1])
		if err != nil {
			return nil, err
		}
		return &board.ResizeObjectEvent{ObjectId: board.ObjectId(args[0]), Height: height}, nil
	case "submit":
		if err := requireArgs(2); err != nil {
			return nil, err
		}
		return &board.SubmitDialogFieldEvent{
			ObjectId: board.ObjectId(args[0]),
			Field:    args[1],
			Value:    strings.Join(args[2:], " "),
		}, nil
	case "leave":
		return &board.LeaveEvent{}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}

// a subscription edit relative to the tracked objects at the time it runs
type SelectEvent struct {
	Selected []board.ObjectId
}

func (self *SelectEvent) Apply(dashboard *board.Dashboard) error {
	selection := map[board.ObjectId]bool{}
	for _, id := range dashboard.Objects().Ids() {
		selection[id] = false
	}
	for _, id := range self.Selected {
		selection[id] = true
	}
	dashboard.ApplySubscriptionEdit(selection)
	return nil
}

// prints the board summary from the event loop, where the renderer is owned
type SummaryEvent struct {
	renderer *ConsoleRenderer
}

func (self *SummaryEvent) Apply(dashboard *board.Dashboard) error {
	for _, line := range self.renderer.Summary() {
		self.renderer.printf("%s", line)
	}
	return nil
}
