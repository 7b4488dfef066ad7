package board

import (
	"fmt"
)

// renders one object type. `Init` is the one time setup and runs before the
// first `Update` of an object. `Update` runs once per update message received,
// even when the data did not change.
type TypeHandler interface {
	Init(view *ViewState)
	Update(view *ViewState, update *ObjectUpdate)
}

type TypeHandlers struct {
	Text   *TextHandler
	Image  *ImageHandler
	Dialog *DialogHandler
}

func NewTypeHandlers(settings *DashboardSettings) *TypeHandlers {
	return &TypeHandlers{
		Text: &TextHandler{
			Height: settings.TextViewportLines,
		},
		Image:  &ImageHandler{},
		Dialog: &DialogHandler{},
	}
}

func (self *TypeHandlers) For(objectType ObjectType) TypeHandler {
	switch objectType {
	case ObjectTypeText:
		return self.Text
	case ObjectTypeImage:
		return self.Image
	case ObjectTypeDialog:
		return self.Dialog
	default:
		panic(fmt.Errorf("no handler for %q: %w", objectType, ErrUnknownObjectType))
	}
}
