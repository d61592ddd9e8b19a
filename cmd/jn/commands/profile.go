package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jnproject/jn/pkg/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect named profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list <type>",
	Short: "List profiles of the given type (http, duckdb, file)",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <@namespace/name>",
	Short: "Show a loaded, merged profile document",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(verbosity)
	if err != nil {
		return err
	}
	ids := rt.profiles.List(profile.Type(args[0]))
	for _, id := range ids {
		fmt.Printf("%s/%s\t%s\t%s\n", id.Namespace, id.Name, id.Tier, id.Path)
	}
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(verbosity)
	if err != nil {
		return err
	}

	ref := strings.TrimPrefix(args[0], "@")
	namespace, name, _ := strings.Cut(ref, "/")

	var lastErr error
	for _, t := range []profile.Type{profile.TypeHTTP, profile.TypeDuckDB, profile.TypeFile} {
		id, err := rt.profiles.Find(t, namespace, name)
		if err != nil {
			lastErr = err
			continue
		}
		if t == profile.TypeDuckDB {
			fmt.Printf("duckdb profile: %s\n", id.Path)
			return nil
		}
		doc, err := rt.loader.Load(id)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	return lastErr
}
