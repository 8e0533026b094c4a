package api

const sessionIDHeader = "X-Session-ID"
