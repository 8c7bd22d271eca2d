/*
Package cowarray implements a persistent dense array of 64-bit integers kept
in an addressable object store.

The structure consists of two records. The root record has a fixed size and
points to the array record holding all values. The address of the root is the
stable handle of the structure: callers save it and use it to reopen the array.

Values are updated in place while the index is within the current length.
Setting an index beyond the end copies the values into a new array record,
fills the gap with zeros, points the root to the new record and then frees the
old one. Reading an index beyond the end is an error: there are no implicit
zeros on read.

Array carries no locks, callers must serialize access.
*/
package cowarray
