package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/e7canasta/frametiler/meta"
)

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Inspect or edit a sequence directory's metadata sidecar",
	Long: `Inspect or edit the ` + meta.SidecarName + ` sidecar of an exported
sequence directory. Editing is surgical: only the addressed field
changes, unknown keys written by other tools stay untouched.`,
}

var metaShowCmd = &cobra.Command{
	Use:   "show DIR [PATH]",
	Short: "Print the sidecar, or one field addressed by a gjson path",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, path, err := readSidecarFile(args[0])
		if err != nil {
			return err
		}
		if len(args) == 1 {
			fmt.Print(string(body))
			return nil
		}
		v := gjson.GetBytes(body, args[1])
		if !v.Exists() {
			return fmt.Errorf("no field %q in %s", args[1], path)
		}
		fmt.Println(v.String())
		return nil
	},
}

var metaSetCmd = &cobra.Command{
	Use:   "set DIR PATH VALUE",
	Short: "Set one sidecar field addressed by a gjson path",
	Long: `Set one sidecar field, e.g.

  frametiler meta set ./tiles unit.axes.0.extent 1920

VALUE is taken as JSON when it parses as JSON (numbers, booleans,
objects), as a string otherwise. The result must still be a valid
sidecar; an edit that breaks it is rejected and not written.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, path, err := readSidecarFile(args[0])
		if err != nil {
			return err
		}

		var edited []byte
		if value := strings.TrimSpace(args[2]); gjson.Valid(value) {
			edited, err = sjson.SetRawBytes(body, args[1], []byte(value))
		} else {
			edited, err = sjson.SetBytes(body, args[1], args[2])
		}
		if err != nil {
			return fmt.Errorf("set %q: %w", args[1], err)
		}

		// Round-trip through the strict decoder before committing.
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, edited, 0o644); err != nil {
			return err
		}
		if _, _, err := meta.ReadSidecar(tmp); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("edit rejected: %w", err)
		}
		return os.Rename(tmp, path)
	},
}

func readSidecarFile(dir string) (body []byte, path string, err error) {
	path = filepath.Join(dir, meta.SidecarName)
	body, err = os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read sidecar: %w", err)
	}
	return body, path, nil
}

func init() {
	metaCmd.AddCommand(metaShowCmd, metaSetCmd)
	rootCmd.AddCommand(metaCmd)
}
