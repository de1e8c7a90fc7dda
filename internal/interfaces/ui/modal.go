package ui

// ModalPresenter shows a modal dialog element. Controllers treat it as an
// optional capability.
type ModalPresenter interface {
	Show(modal *Element)
}

// ClassModal shows a modal by toggling its visibility markers in the markup
type ClassModal struct{}

// Show marks the modal as displayed
func (ClassModal) Show(modal *Element) {
	modal.AddClass("show")
	modal.SetStyle("display", "block")
}
