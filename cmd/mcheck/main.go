// Command mcheck is a thin CLI shell around the hctlpsbn façade: it builds a
// couple of small illustrative networks in-process and checks a formula
// against one of them. Reading real PSBN files, progress reporting, and
// result archiving are explicitly out of scope for the library and are not
// reimplemented here beyond what is needed to demonstrate the collaborator
// wiring.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	hctlpsbn "github.com/tessellated-space/hctl-psbn"
	"github.com/tessellated-space/hctl-psbn/network"
)

var (
	modelName string
	verbose   bool
)

func main() {
	root := &cobra.Command{
		Use:   "mcheck [formula]",
		Short: "Check an HCTL formula against a built-in example network",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	root.Flags().StringVar(&modelName, "model", "identity2", "built-in network: identity2, oscillator1, param2")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	if verbose {
		hctlpsbn.Log.SetLevel(logrus.DebugLevel)
	}

	net, err := builtinModel(modelName)
	if err != nil {
		return err
	}

	css, err := hctlpsbn.ModelCheck(net, args[0], nil)
	if err != nil {
		return err
	}

	states, colours, pairs := hctlpsbn.Cardinality(css)
	fmt.Printf("states=%s colours=%s pairs=%s\n", states, colours, pairs)
	return nil
}

// builtinModel returns one of a few tiny networks used throughout this
// module's own tests, so the CLI is useful without a file-format reader.
func builtinModel(name string) (*network.Network, error) {
	switch name {
	case "identity2":
		net := network.New([]string{"v0", "v1"})
		net.SetUpdate(0, network.Var(0))
		net.SetUpdate(1, network.Var(1))
		return net, nil
	case "oscillator1":
		net := network.New([]string{"v0"})
		net.SetUpdate(0, network.Not(network.Var(0)))
		return net, nil
	case "param2":
		net := network.New([]string{"v0", "v1"})
		p := net.AddParam("p")
		net.SetUpdate(0, network.Var(0))
		net.SetUpdate(1, network.And(network.Param(p), network.Var(0)))
		return net, nil
	default:
		return nil, fmt.Errorf("unknown built-in model %q", name)
	}
}
