// Package patchsync exchanges selective patches between working trees
// through an S3-compatible bucket.
//
// An Orchestrator runs five workflows, each returning a *Task immediately:
//
//   - CreateAndUpload builds <name>.patch in the repository and uploads it
//     under the key <name>.patch.
//   - ListAvailable lists the keys in the bucket.
//   - DownloadAndApply downloads a key into a directory and applies it there.
//   - Delete removes a key.
//   - ListChanges lists the changed paths a selection can be chosen from.
//
// A Task moves from Idle to Running to Done or Failed exactly once. Callers
// either Wait on the task or register a completion handler; handler calls are
// serialized so shared state can be updated without extra locking.
//
// Configuration is an immutable Config value passed into every call:
//
//	orch := patchsync.New(patchsync.WithLogger(logger))
//	cfg := patchsync.Config{
//	    AccessKey: "AKIA...",
//	    SecretKey: "...",
//	    Region:    "us-east-1",
//	    Bucket:    "team-patches",
//	    RepoPath:  "/src/project",
//	}
//
//	res, err := orch.CreateAndUpload(ctx, cfg, "Fix", []string{"a.txt"}).Wait(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println("uploaded", res.Key)
//
// Nothing is retried. Last write wins at the store: uploading an existing
// name overwrites it both locally and remotely.
package patchsync
