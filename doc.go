// Package chromatica is a client-side driver for a running browser that
// speaks the Chrome DevTools Protocol over a single WebSocket connection.
//
// It demultiplexes the flat request/response/event wire stream into a
// target and frame manager, a selector engine that pierces shadow roots and
// iframes, and per-target subsystems for network interception, dialogs,
// file choosers and user-agent emulation. Browser process launching, CLI
// tooling and the higher-level scraping facade are deliberately out of
// scope; see SPEC_FULL.md.
package chromatica
