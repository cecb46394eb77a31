// Package workflow advances work items through the fetch and transcode
// stages.
//
// The Manager runs two lanes concurrently over one fixed work list. The fetch
// lane owns to_fetch and fetching; the transcode lane owns fetched and
// transcoding. Each lane scans the list, acts on every item waiting in its
// start status, and repeats until no item can still progress for it. Fetch
// attempts within a pass are paced so the recorder is not overloaded.
//
// Between scans the fetch lane waits for the poll interval. The transcode
// lane does the same in "poll" hand-off mode; in "signal" mode it sleeps
// until the fetch lane reports an item outcome, which removes the poll
// latency between the stages.
//
// A busy failure during fetch returns the item to to_fetch for the next scan.
// Any other failure marks the item errored, notifies, and leaves it out of
// further processing.
package workflow
