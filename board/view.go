package board

// the data record for an object. owned by `ObjectRegistry`.
type TrackedObject struct {
	Id    ObjectId
	Name  string
	Board BoardName
	Type  ObjectType
	// producer liveness, independent of the subscription
	Active bool
	// producer version of the latest update, 0 when the producer sends none
	Version int64
	// latest update received
	Last *ObjectUpdate
}

// rendered state for one object. it holds no rendering handles;
// the `Renderer` keeps its own handles keyed by object id.
type ViewState struct {
	Object *TrackedObject
	// true until the type handler init runs, on the first dispatch
	NeedsInit bool
	// false while placed with no content, between create and the first
	// applied update. `Renderer.ObjectPlaced` sees a new object hidden.
	// an object never goes back to hidden, closing removes it.
	Visible bool
	// nil until init. one of *TextView, *ImageView, *DialogView
	Content ContentView
}

func (self *ViewState) Id() ObjectId {
	return self.Object.Id
}

type ContentView interface {
	isContentView()
}

// text rendered as lines, with a scroll window of `Height` lines
type TextView struct {
	Lines []string
	// index of the first visible line
	ScrollTop int
	Height    int
}

func (self *TextView) isContentView() {}

// the last line is visible
func (self *TextView) AtBottom() bool {
	return len(self.Lines)-self.ScrollTop <= self.Height
}

func (self *TextView) ScrollToBottom() {
	self.ScrollTop = max(0, len(self.Lines)-self.Height)
}

// user scroll, clamped to the content
func (self *TextView) ScrollTo(top int) {
	self.ScrollTop = min(max(0, top), max(0, len(self.Lines)-1))
}

type ImageView struct {
	Source string
	// displayed height. 0 is the natural height until the container is resized.
	Height int
	// the image height tracks the container height
	ResizeBound bool
}

func (self *ImageView) isContentView() {}

type DialogView struct {
	// in first-seen order
	Groups []*DialogGroup
	// field name -> control
	Controls map[string]*DialogControl
}

func (self *DialogView) isContentView() {}

type DialogGroup struct {
	Name string
	// control names in field order
	Controls []string
}

type DialogControl struct {
	Name  string
	Type  DialogFieldType
	Group string
	Text  string
	// inputs only
	Value string
	// as sent by the producer
	FieldEnabled bool
	// effective state, always `FieldEnabled && object active`. false for labels.
	Enabled bool
	Handle  string
}
