// Package middleware decorates a ports.ConversationStore.
//
// Chat sessions carry user instructions and draft flows that may describe
// internal systems. The encryption middleware seals them with AES-GCM and
// supports key rotation; the PII middleware masks configured patterns in
// turn contents before they reach the store.
package middleware
