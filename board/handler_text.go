package board

type TextHandler struct {
	// lines visible in the scroll window
	Height int
}

func (self *TextHandler) Init(view *ViewState) {
	if _, ok := view.Content.(*TextView); ok {
		return
	}
	view.Content = &TextView{
		Lines:  []string{},
		Height: self.Height,
	}
}

// append mode adds a line and follows the bottom only if the bottom was visible
// before the append. replace mode shows only the latest fragment.
func (self *TextHandler) Update(view *ViewState, update *ObjectUpdate) {
	text := update.Content.(*TextContent)
	textView := view.Content.(*TextView)

	if text.Append {
		follow := textView.AtBottom()
		textView.Lines = append(textView.Lines, text.Data)
		if follow {
			textView.ScrollToBottom()
		}
	} else {
		textView.Lines = []string{text.Data}
		textView.ScrollTop = 0
	}
}

// user scroll interaction
func (self *TextHandler) Scroll(view *ViewState, top int) {
	if textView, ok := view.Content.(*TextView); ok {
		textView.ScrollTo(top)
	}
}
