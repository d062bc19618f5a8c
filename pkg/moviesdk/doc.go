/*
Package moviesdk provides a client for the movie-catalog REST API used by the
cinedash dashboards.

# Client vs Session

The package is organized around two types:

  - Client: unauthenticated operations (login) and the factory for sessions
  - Session: operations authenticated with a bearer access token

	client := moviesdk.NewClient("http://localhost:8000")

	tok, err := client.Login(ctx, "alice", "Secret123!")
	if err != nil {
		return err
	}

	session := client.NewSession(tok.AccessToken)
	profile, err := session.Me(ctx)
	dash, err := session.Dashboard(ctx, "member")

	// Logout is best effort, the caller forgets the token either way.
	_ = session.Logout(ctx)

A Session does not refresh or inspect its token. Expiry is discovered when the
API answers a request with a non-2xx status.

# Payloads

The API is loosely typed. Profile and DashboardUser use pointer fields so a
missing field can be told apart from an empty one. DashboardResponse treats an
"actions" or "links" value that is not a JSON array as absent.

# Error Handling

Every failed call returns an *APIError tagged with an ErrorKind:

  - KindNetwork: the request never produced a response (DNS, refused, timeout, cancelled)
  - KindUnauthorized: the API answered 401 or 403
  - KindStatus: any other non-2xx answer
  - KindMalformed: a 2xx answer whose body is empty or not the expected JSON

The Message field carries the server supplied text, taken from
{"error":{"message":...}} or {"detail":"..."} in that order. Use MessageOf to
fall back to a fixed string:

	if err != nil {
		msg := moviesdk.MessageOf(err, "Could not load your profile right now.")
		...
	}

# Observing calls

Client.Observe, when set, is invoked after every API call with the operation
name, its duration and the resulting error. The dashboard server uses it to
feed latency histograms.
*/
package moviesdk
