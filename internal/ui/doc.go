// Package ui renders the promptly console shell: header, navigation,
// footer, template gallery and the modal container.
//
// # Layout
//
// Expanded (terminal at least the compact width):
//
//	┌───────────────────────────────────────────────┐
//	│ Header (1 line)                               │
//	├───────────┬───────────────────────────────────┤
//	│ Sidebar   │ Content (gallery, detail, page)   │
//	│           │                                   │
//	├───────────┴───────────────────────────────────┤
//	│ Chat bubble                                   │
//	│ Footer (1 line)                               │
//	└───────────────────────────────────────────────┘
//
// Compact replaces the sidebar with a one-line NavBar under the header.
// The NavBar carries a Docs link that the Sidebar does not.
//
// ViewContext is the single place layout sizes are computed. Tab toggles
// focus between navigation and content.
package ui
