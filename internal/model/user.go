package model

import "time"

// User represents an account as stored in the `users` table.  The json
// tags are omitted because handlers expose their own response types and
// the password hash must never leave the server.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique display name chosen at signup.
//  Email        – unique email address; listings and side records refer
//                 to users by this value.
//  PasswordHash – bcrypt hashed password.
//  Points       – reward points earned by confirmed donations.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    // users.id
    Username     string    // users.username
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Points       int64     // users.points
    CreatedAt    time.Time // users.created_at
}
