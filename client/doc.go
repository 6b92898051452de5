// Package client implements the request pipeline shared by all apikit
// service clients: it builds requests against a configured base URL, injects
// authentication, classifies failures into a closed error taxonomy, and
// retries transient outcomes with exponential backoff.
//
// A Client is constructed from a Config (see Builder) and executes Request
// descriptors via Do, or through the typed generic helpers Get, Post, Put,
// Patch, and Delete which decode JSON response bodies:
//
//	cfg, err := client.NewBuilder("posts").
//		BaseURL("https://api.example.com").
//		Auth(auth.NewBearer(token)).
//		Build()
//	c, err := client.New(cfg)
//	posts, err := client.Get[[]Post](ctx, c, "/posts")
//
// Every transport outcome updates the client's health flag, which Health
// combines with auth validity into a probe result for registry aggregation.
package client
