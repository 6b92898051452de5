// Package users is a service client for a remote users resource, built on
// the apikit request pipeline. Unlike posts, users are never cached; every
// read goes to the transport.
package users
