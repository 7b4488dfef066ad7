package board

type ObjectType string

const (
	ObjectTypeText   ObjectType = "text"
	ObjectTypeImage  ObjectType = "image"
	ObjectTypeDialog ObjectType = "dialog"
)

// one variant per object type. the set is closed: every switch over
// `ObjectContent` must handle all three and panic otherwise.
type ObjectContent interface {
	ObjectType() ObjectType
	isObjectContent()
}

type TextContent struct {
	Data string
	// append as a new line (producer `rotate`), otherwise replace
	Append bool
}

func (self *TextContent) ObjectType() ObjectType {
	return ObjectTypeText
}

func (self *TextContent) isObjectContent() {}

type ImageContent struct {
	// base64 encoded jpeg
	Data string
}

func (self *ImageContent) ObjectType() ObjectType {
	return ObjectTypeImage
}

func (self *ImageContent) isObjectContent() {}

// data uri for the embedded image
func (self *ImageContent) Source() string {
	return "data:image/jpeg;base64," + self.Data
}

type DialogContent struct {
	// in display order
	Fields []DialogField
}

func (self *DialogContent) ObjectType() ObjectType {
	return ObjectTypeDialog
}

func (self *DialogContent) isObjectContent() {}

type DialogFieldType string

const (
	DialogFieldLabel  DialogFieldType = "label"
	DialogFieldInput  DialogFieldType = "input"
	DialogFieldButton DialogFieldType = "button"
)

type DialogField struct {
	Name    string
	Type    DialogFieldType
	Text    string
	Value   string
	Enabled bool
	Group   string
	// `on_change` for inputs, `on_click` for buttons. empty when the producer does not listen.
	Handle string
}
