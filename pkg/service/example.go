package service

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// ExampleDiagram is the layout written by the init command.
const ExampleDiagram = `base_dir/
├── env
├── src/
│   └── users/
│       ├── user_model.ts
│       ├── user_controller.ts
│       └── users_utils/
│           └── user_initialize.ts
├── config/
│   └── global_config/
│       ├── app_config.json
│       └── db_config.json
└── tsconfig.json
`

// WriteExample writes ExampleDiagram to path. An existing file is only
// replaced when overwrite is set.
func (s *Service) WriteExample(path string, overwrite bool) error {
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}
	if exists && !overwrite {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := afero.WriteFile(s.fs, path, []byte(ExampleDiagram), s.filePerm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *Service) filePerm() os.FileMode {
	if s.Config.FilePerm != 0 {
		return s.Config.FilePerm
	}
	return 0o644
}
