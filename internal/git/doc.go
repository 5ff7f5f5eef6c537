// Package git runs git by shelling out to the git executable.
//
// Every operation is bound to a working tree through Repo:
//
//	repo := git.Open("/home/me/ideas")
//	if !repo.IsRepo(ctx) {
//	    _ = repo.Init(ctx)
//	}
//	err := repo.AddAndCommit(ctx, "my-idea", "src/my-idea.md", "src/SUMMARY.md")
//	commits, err := repo.Log(ctx, 20)
//
// Failures are returned as *output.ExitError: a missing git binary is a
// process-launch error, a failing git command is a system error whose
// message carries git's stderr.
package git
