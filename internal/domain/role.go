package domain

// RoleAdmin is the bearer-token role allowed to manage the message template.
const RoleAdmin = "admin"
