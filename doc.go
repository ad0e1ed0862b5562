// Package pubstream prepares publication resources for delivery to a reading
// window.
//
// # Quick Start
//
// Create a streamer over a state store, register the injection transformer,
// and run documents through it:
//
//	st := pubstream.NewStreamer(store.NewMemory(readerconfig.Default()))
//	st.SetupMathJax(func() string { return srv.BaseURL() + "/math-jax/es5/tex-mml-chtml.js" })
//
//	html, err := st.Transform(ctx, transform.Document{Link: link, Body: body})
//	msg := st.StyleMessage(ctx, token)
//
// # Delivery Flow
//
// Each delivery request carries a session token identifying the reading
// window. Two things happen independently:
//
//  1. The token is resolved to the window's reader configuration, falling back
//     to the default configuration on any failure, and projected into a
//     Readium CSS styling message sent beside the document.
//  2. The resource body runs through the transformer chain. The built-in
//     injection transformer adds drag guards and, when enabled in the default
//     configuration, the MathJax bootstrap before </head>.
//
// Resolution never fails. A transformer failure fails the whole delivery;
// a partially transformed document is never returned.
//
// # Configuration
//
// Use functional options to customize the streamer:
//
//	st := pubstream.NewStreamer(provider,
//	    pubstream.WithLogger(logger),
//	    pubstream.WithMetrics(m),
//	    pubstream.WithURLRoot("http://127.0.0.1:8080/readium-css"),
//	)
package pubstream
