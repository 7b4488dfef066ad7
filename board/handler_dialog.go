package board

import (
	"fmt"
)

// dialogs are a schema of fields, grouped by `Group` in first-seen order.
// a field name (or field type) unknown to the current schema rebuilds the
// whole dialog before the update is applied.
type DialogHandler struct {
}

func (self *DialogHandler) Init(view *ViewState) {
	dialog := view.Object.Last.Content.(*DialogContent)
	self.build(view, dialog)
}

func (self *DialogHandler) build(view *ViewState, dialog *DialogContent) {
	dialogView := &DialogView{
		Groups:   []*DialogGroup{},
		Controls: map[string]*DialogControl{},
	}
	groups := map[string]*DialogGroup{}
	for _, field := range dialog.Fields {
		control := &DialogControl{
			Name:  field.Name,
			Type:  field.Type,
			Group: field.Group,
		}
		applyField(control, &field, view.Object.Active)
		dialogView.Controls[field.Name] = control

		group, ok := groups[field.Group]
		if !ok {
			group = &DialogGroup{
				Name:     field.Group,
				Controls: []string{},
			}
			groups[field.Group] = group
			dialogView.Groups = append(dialogView.Groups, group)
		}
		group.Controls = append(group.Controls, field.Name)
	}
	view.Content = dialogView
}

func (self *DialogHandler) Update(view *ViewState, update *ObjectUpdate) {
	dialog := update.Content.(*DialogContent)
	dialogView := view.Content.(*DialogView)

	if !dialogView.matches(dialog) {
		// schema drift
		glogDialog("[%s]schema changed, rebuild", view.Id())
		self.build(view, dialog)
		dialogView = view.Content.(*DialogView)
	}
	for _, field := range dialog.Fields {
		applyField(dialogView.Controls[field.Name], &field, update.Active)
	}
}

// the object liveness changed without an update
func (self *DialogHandler) SetActive(view *ViewState, active bool) {
	if dialogView, ok := view.Content.(*DialogView); ok {
		for _, control := range dialogView.Controls {
			control.Enabled = effectiveEnabled(control.Type, control.FieldEnabled, active)
		}
	}
}

// returns the `dialog event` name for a submit or click on the control
func (self *DialogHandler) Submit(view *ViewState, name string, value string) (string, error) {
	dialogView, ok := view.Content.(*DialogView)
	if !ok {
		return "", fmt.Errorf("object %s is not a dialog: %w", view.Id(), ErrUnknownObject)
	}
	control, ok := dialogView.Controls[name]
	if !ok {
		return "", fmt.Errorf("object %s field %s: %w", view.Id(), name, ErrUnknownObject)
	}
	if !control.Enabled {
		return "", fmt.Errorf("object %s field %s: %w", view.Id(), name, ErrControlDisabled)
	}
	if control.Handle == "" {
		return "", fmt.Errorf("object %s field %s: %w", view.Id(), name, ErrNoHandle)
	}
	if control.Type == DialogFieldInput {
		control.Value = value
	}
	return fmt.Sprintf("%s@%s", control.Name, control.Handle), nil
}

// every field name is known with the same type
func (self *DialogView) matches(dialog *DialogContent) bool {
	for _, field := range dialog.Fields {
		control, ok := self.Controls[field.Name]
		if !ok || control.Type != field.Type {
			return false
		}
	}
	return true
}

func applyField(control *DialogControl, field *DialogField, active bool) {
	control.Text = field.Text
	control.Handle = field.Handle
	control.FieldEnabled = field.Enabled
	switch field.Type {
	case DialogFieldLabel:
		control.FieldEnabled = false
	case DialogFieldInput:
		control.Value = field.Value
	case DialogFieldButton:
	default:
		panic(fmt.Errorf("field %s type %q: %w", field.Name, field.Type, ErrUnknownFieldType))
	}
	control.Enabled = effectiveEnabled(field.Type, control.FieldEnabled, active)
}

// the only place a control is enabled or disabled
func effectiveEnabled(fieldType DialogFieldType, fieldEnabled bool, active bool) bool {
	switch fieldType {
	case DialogFieldInput, DialogFieldButton:
		return fieldEnabled && active
	default:
		return false
	}
}

var glogDialog = LogFn(LogLevelDebug, "dialog")
