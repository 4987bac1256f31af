// Package utils is the root of a small collection of building blocks for producing large CSV exports
// without holding them in memory, and for bounding how much work runs at once while doing so.
//
// The packages are:
//
//   - [github.com/friendsoftheweb/utils/semaphore]: a FIFO counting semaphore with idempotent release handles.
//   - [github.com/friendsoftheweb/utils/limit]: wrappers that cap the number of concurrent calls of a function.
//   - [github.com/friendsoftheweb/utils/stream]: channel streams of values and errors, with an order-preserving concurrent map.
//   - [github.com/friendsoftheweb/utils/csvstream]: CSV cell and row serialization, and a pull-based CSV stream producer.
//   - [github.com/friendsoftheweb/utils/csvhttp]: serving CSV streams as HTTP downloads with gin.
//
// The csvexport command in cmd/csvexport ties them together.
package utils
