// Package cardpdf provides PDF adapters for contract cards.
//
// FPDFDocument implements contract.Document on top of go-pdf/fpdf and is the
// writer behind summary downloads. Renderer prints a rendered card (HTML) to
// PDF through a pluggable engine (headless Chromium via chromedp, or
// wkhtmltopdf). Rendering is gated by Renderer.Enabled.
package cardpdf
