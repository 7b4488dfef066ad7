package board

type ImageHandler struct {
}

// binds the resize observer: from here on the image height follows the container
func (self *ImageHandler) Init(view *ViewState) {
	if _, ok := view.Content.(*ImageView); ok {
		return
	}
	view.Content = &ImageView{
		ResizeBound: true,
	}
}

func (self *ImageHandler) Update(view *ViewState, update *ObjectUpdate) {
	image := update.Content.(*ImageContent)
	imageView := view.Content.(*ImageView)
	imageView.Source = image.Source()
}

// the container was resized by the user
func (self *ImageHandler) Resize(view *ViewState, containerHeight int) {
	if imageView, ok := view.Content.(*ImageView); ok && imageView.ResizeBound {
		imageView.Height = max(0, containerHeight)
	}
}
