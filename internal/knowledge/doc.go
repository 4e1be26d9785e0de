// Package knowledge defines the domain types the RAG News backend exchanges
// with this client: knowledge bases and the files they contain.
//
// The JSON field names match the backend's wire format exactly (snake_case,
// FastAPI/pydantic serialization). The backend is the source of truth for
// every field here; in particular Base.FileCount is a server-computed cache
// that is only trusted immediately after a fresh list fetch and is never
// incremented locally.
package knowledge
