// Package cdp holds the identifier types shared by every CDP domain
// package and by the driver core, mirroring the role github.com/chromedp/
// cdproto/cdp plays for the teacher: a small, dependency-free leaf that the
// generated-looking domain packages and the core both import, avoiding a
// cycle between them.
package cdp

import "github.com/josharian/intern"

// TargetID identifies an addressable execution unit in the browser: a page,
// an out-of-process iframe, a webview, a tab.
type TargetID string

// FrameID identifies a document-owning node in the page's frame tree. It
// equals the owning TargetID when the frame has been promoted to its own
// target (OOPIF).
type FrameID string

// SessionID identifies a multiplexing channel bound to a single target over
// the shared WebSocket.
type SessionID string

// BrowserContextID identifies an incognito-like container isolating
// cookies/storage among the targets created inside it.
type BrowserContextID string

// BackendNodeID is a stable, cross-session identifier for a DOM node in the
// browser backend.
type BackendNodeID int64

// NodeID is a per-session frontend handle for a DOM node. It is invalidated
// by unrelated DOM mutations, per the NodeId staleness problem in the
// design notes.
type NodeID int64

// ExecutionContextID identifies a Runtime execution context within a frame.
type ExecutionContextID int64

// EmptyFrameID denotes "the current top-level frame" where an explicit
// FrameID would otherwise be required.
const EmptyFrameID FrameID = ""

// EmptyNodeID is the sentinel DOM.querySelector returns for "no match".
const EmptyNodeID NodeID = 0

// InternTarget, InternFrame and InternSession return interned copies of the
// respective id strings, so the target manager's indices and the selector
// engine's frame walks hash and compare cheaply, per the specification's
// "should intern them" requirement on identifiers.
func InternTarget(id string) TargetID   { return TargetID(intern.String(id)) }
func InternFrame(id string) FrameID     { return FrameID(intern.String(id)) }
func InternSession(id string) SessionID { return SessionID(intern.String(id)) }
