package builtin

import (
	"webshell/internal/adapter"
	"webshell/internal/output"
	"webshell/internal/process"
)

// newCat reads argv[1] from storage and writes its content, or reports
// the storage error and exits 1.
func newCat(parent process.Process, argv []string, svc Services) process.Process {
	return adapter.NewCaller(parent, func(self process.Process) int {
		if len(argv) < 2 {
			return usageErr(self, "cat: missing path")
		}
		res := <-svc.Storage.Read(argv[1]).Done()
		if res.Err != nil {
			return cmdErr(self, "cat", res.Err)
		}
		if self.Stdout() != nil {
			self.Stdout().Write(output.Text(res.Value))
		}
		return 0
	})
}

// newLs lists every stored path, one per line.
func newLs(parent process.Process, argv []string, svc Services) process.Process {
	return adapter.NewCaller(parent, func(self process.Process) int {
		res := <-svc.Storage.List("").Done()
		if res.Err != nil {
			return cmdErr(self, "ls", res.Err)
		}
		lines := make([]output.Value, len(res.Value))
		for i, name := range res.Value {
			lines[i] = output.Text(name)
		}
		if self.Stdout() != nil {
			self.Stdout().Write(output.Array(lines))
		}
		return 0
	})
}

// newMv moves argv[1] to argv[2].
func newMv(parent process.Process, argv []string, svc Services) process.Process {
	return adapter.NewCaller(parent, func(self process.Process) int {
		if len(argv) < 3 {
			return usageErr(self, "mv: missing source or destination")
		}
		res := <-svc.Storage.Move(argv[1], argv[2]).Done()
		if res.Err != nil {
			return cmdErr(self, "mv", res.Err)
		}
		return 0
	})
}

// newRm removes argv[1]. Removing a path that does not exist is not an
// error (services.Storage.Remove is idempotent).
func newRm(parent process.Process, argv []string, svc Services) process.Process {
	return adapter.NewCaller(parent, func(self process.Process) int {
		if len(argv) < 2 {
			return usageErr(self, "rm: missing path")
		}
		res := <-svc.Storage.Remove(argv[1]).Done()
		if res.Err != nil {
			return cmdErr(self, "rm", res.Err)
		}
		return 0
	})
}

func usageErr(self process.Process, msg string) int {
	if self.Stderr() != nil {
		self.Stderr().Write(output.Text("sh: " + msg))
	}
	return 2
}

func cmdErr(self process.Process, cmd string, err error) int {
	if self.Stderr() != nil {
		self.Stderr().Write(output.Text("sh: " + cmd + ": " + err.Error()))
	}
	return 1
}
