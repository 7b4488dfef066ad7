package board

// the presentation collaborator. it owns the on-screen elements and maps
// them by board name and object id. the engine calls it after each state
// change and never reads anything back.
type Renderer interface {
	// navigation entry and containers for a new board
	BoardCreated(name BoardName)
	BoardClosed(name BoardName)
	// show `name`, hide every other board. empty when no board is active.
	BoardActivated(name BoardName)
	// the badge is hidden for 0
	UnreadChanged(name BoardName, count int)
	// the object container is attached to its board at `index` of the board
	// object list. the container must be (re)made sortable and draggable.
	ObjectPlaced(view *ViewState, index int)
	ObjectRemoved(id ObjectId)
	// title, active indicator, content and visibility changed
	ObjectRendered(view *ViewState)
	// open the bulk subscription selection
	SubscriptionListReceived(entries []ObjectSummary)
}

// a renderer that draws nothing
type NopRenderer struct {
}

func (self *NopRenderer) BoardCreated(name BoardName)                     {}
func (self *NopRenderer) BoardClosed(name BoardName)                      {}
func (self *NopRenderer) BoardActivated(name BoardName)                   {}
func (self *NopRenderer) UnreadChanged(name BoardName, count int)         {}
func (self *NopRenderer) ObjectPlaced(view *ViewState, index int)         {}
func (self *NopRenderer) ObjectRemoved(id ObjectId)                       {}
func (self *NopRenderer) ObjectRendered(view *ViewState)                  {}
func (self *NopRenderer) SubscriptionListReceived(entries []ObjectSummary) {}
