// Package mongostore implements todo.Store on a MongoDB collection.
//
// Documents are keyed by an ObjectID assigned when the todo is created; the
// hex form of that ObjectID is the todo id exposed to clients. Each
// operation maps onto a single document command so writes are atomic per
// todo: InsertOne for Create, FindOneAndUpdate with $set for MergeUpdate,
// DeleteOne for Delete and Drop for DeleteAll.
package mongostore
