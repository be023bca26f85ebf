// Package resolver resolves indirect references in PDF object graphs.
//
// The [ObjectResolver] type turns references into concrete objects, either
// one step at a time (Resolve) or recursively (ResolveDeep). Deep
// resolution produces a self-contained tree with no references left, which
// the document package relies on when it materializes pages as owned
// copies: cyclic references (a page's /Parent, an annotation's /P) are cut
// by substituting null rather than reported as errors.
package resolver
