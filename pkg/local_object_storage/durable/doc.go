/*
Package durable implements the file layer of the storage: a root directory
created once per database instance and a set of fixed-size files inside it,
one per numeric identifier.

Files are named after their identifier as 8 lowercase hexadecimal digits with
the ".fw" suffix and are only accessible by the owner. All operations are
blocking and rely on explicit fsync calls for durability; there is no write
buffering at this level.
*/
package durable
