// Package domain contains the core business entities, value objects, and
// domain logic of the lost-and-found service: categories, users, lost and
// found items, and verification codes. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
