package ui

// Layout constants
const (
	// HeaderHeight is the height of the header in lines
	HeaderHeight = 1

	// FooterHeight is the height of the footer in lines
	FooterHeight = 1

	// NavBarHeight is the height of the compact top navigation
	NavBarHeight = 1

	// ChatBubbleHeight is the height of the chat widget row
	ChatBubbleHeight = 1

	// BorderSize is the total border width (1 on each side)
	BorderSize = 2

	// SidebarWidth is the fixed outer width of the expanded navigation
	SidebarWidth = 24

	// MinTerminalWidth and MinTerminalHeight bound layout math
	MinTerminalWidth  = 40
	MinTerminalHeight = 10

	// DefaultWrapWidth is used when the content width is unknown
	DefaultWrapWidth = 80
)

// Gallery card dimensions
const (
	CardWidth  = 30
	CardHeight = 6
	CardGap    = 1
)

// Modal dimensions
const (
	// ModalWidth is the default width of modals
	ModalWidth = 60

	// ModalInputCharLimit is the character limit for modal text inputs
	ModalInputCharLimit = 120

	// ModalInputWidth is the width of modal text inputs
	ModalInputWidth = 50
)
