// Package watch re-validates schemas when they change on disk.
//
// A Watcher observes a single schema file or a directory tree of .toml
// files with fsnotify. Bursts of events (an editor's write-rename-chmod
// sequence, a git checkout) are coalesced by a Debouncer so the callback
// runs once per burst with the set of changed paths.
//
//	w, err := watch.New(&watch.Config{Path: "schemas"}, logger)
//	if err != nil {
//	    return err
//	}
//	return w.Watch(ctx, func(ctx context.Context, paths []string) error {
//	    for _, p := range paths {
//	        if _, err := v.RunValidation(ctx, p); err != nil {
//	            logger.Error("schema invalid", "path", p, "error", err)
//	        }
//	    }
//	    return nil
//	})
package watch
