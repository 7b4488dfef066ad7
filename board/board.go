package board

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type Board struct {
	Name BoardName
	// front is the top of the board
	ObjectIds []ObjectId
	// 0 for the active board
	UnreadCount int
}

func (self *Board) IndexOf(id ObjectId) int {
	return slices.Index(self.ObjectIds, id)
}

// board registry.
// the only owner of boards, board membership and the active board.
// an object id is in at most one board at a time.
type BoardRegistry struct {
	renderer Renderer

	boards map[BoardName]*Board
	// navigation order, creation order
	names []BoardName
	// empty when no board is active
	active BoardName

	// object id -> board holding it
	objectBoards map[ObjectId]BoardName

	log LogFunction
}

func NewBoardRegistry(renderer Renderer) *BoardRegistry {
	return &BoardRegistry{
		renderer:     renderer,
		boards:       map[BoardName]*Board{},
		names:        []BoardName{},
		objectBoards: map[ObjectId]BoardName{},
		log:          LogFn(LogLevelDebug, "board"),
	}
}

func (self *BoardRegistry) Get(name BoardName) (*Board, bool) {
	board, ok := self.boards[name]
	return board, ok
}

// in navigation order
func (self *BoardRegistry) Names() []BoardName {
	return slices.Clone(self.names)
}

func (self *BoardRegistry) Active() BoardName {
	return self.active
}

func (self *BoardRegistry) BoardOf(id ObjectId) (BoardName, bool) {
	name, ok := self.objectBoards[id]
	return name, ok
}

// a new board is never made active here
func (self *BoardRegistry) GetOrCreate(name BoardName) *Board {
	if board, ok := self.boards[name]; ok {
		return board
	}
	board := &Board{
		Name:        name,
		ObjectIds:   []ObjectId{},
		UnreadCount: 0,
	}
	self.boards[name] = board
	self.names = append(self.names, name)
	self.log("%s created", name)
	self.renderer.BoardCreated(name)
	return board
}

// activating the active board is allowed
func (self *BoardRegistry) Activate(name BoardName) error {
	board, ok := self.boards[name]
	if !ok {
		return fmt.Errorf("activate %s: %w", name, ErrUnknownBoard)
	}
	if self.active != name {
		self.log("%s activated", name)
	}
	self.active = name
	self.renderer.BoardActivated(name)
	if board.UnreadCount != 0 {
		board.UnreadCount = 0
		self.renderer.UnreadChanged(name, 0)
	}
	return nil
}

// counts one delivered update on an inactive board
func (self *BoardRegistry) MarkUnread(name BoardName) {
	if name == self.active {
		return
	}
	board := self.require(name)
	board.UnreadCount += 1
	self.renderer.UnreadChanged(name, board.UnreadCount)
}

// moves the object to the front of `to`, creating the board if needed.
// moving within the same board moves the object to the front.
func (self *BoardRegistry) MoveObject(view *ViewState, to BoardName) {
	id := view.Id()
	self.detach(id)
	view.Object.Board = to
	index := self.place(to, id)
	self.log("%s moved to %s", id, to)
	self.renderer.ObjectPlaced(view, index)
	self.renderer.ObjectRendered(view)
}

// removes the board and its navigation entry. the objects of the board
// must have been detached first.
func (self *BoardRegistry) remove(name BoardName) {
	board := self.require(name)
	if 0 < len(board.ObjectIds) {
		panic(fmt.Errorf("close %s with %d objects still placed", name, len(board.ObjectIds)))
	}
	delete(self.boards, name)
	if i := slices.Index(self.names, name); 0 <= i {
		self.names = slices.Delete(self.names, i, i+1)
	}
	if self.active == name {
		self.active = ""
	}
	self.log("%s closed", name)
	self.renderer.BoardClosed(name)
}

// inserts at the front of the board and returns the index
func (self *BoardRegistry) place(name BoardName, id ObjectId) int {
	if current, ok := self.objectBoards[id]; ok {
		panic(fmt.Errorf("object %s placed on %s is already on %s", id, name, current))
	}
	board := self.GetOrCreate(name)
	board.ObjectIds = slices.Insert(board.ObjectIds, 0, id)
	self.objectBoards[id] = name
	return 0
}

// removes exactly the one entry for the object
func (self *BoardRegistry) detach(id ObjectId) {
	name, ok := self.objectBoards[id]
	if !ok {
		panic(fmt.Errorf("object %s is not on any board", id))
	}
	board := self.require(name)
	i := board.IndexOf(id)
	if i < 0 {
		panic(fmt.Errorf("object %s is not in the list of board %s", id, name))
	}
	board.ObjectIds = slices.Delete(board.ObjectIds, i, i+1)
	delete(self.objectBoards, id)
}

// a missing board for a tracked reference is a consistency violation
func (self *BoardRegistry) require(name BoardName) *Board {
	board, ok := self.boards[name]
	if !ok {
		panic(fmt.Errorf("board %s: %w", name, ErrUnknownBoard))
	}
	return board
}
