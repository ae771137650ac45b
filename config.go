package main

import (
	"fmt"

	"github.com/pkg/errors"

	core "hpcjob.io/core"
)

type ConfigFlags struct {
	Help    bool   `short:"h" long:"help" description:"Show this help message"`
	Cluster string `short:"c" long:"cluster" description:"cluster name" default:"default"`
}

type ConfigCommand struct {
	Set  ConfigSetCommand  `command:"set" description:"create or replace a cluster profile"`
	Use  ConfigUseCommand  `command:"use" description:"select the cluster profile used by default"`
	List ConfigListCommand `command:"list" description:"list cluster profiles"`
}

type ConfigSetCommand struct {
	Config    ConfigFlags `group:"Configuration Options"`
	Scheduler string      `long:"scheduler" description:"batch system" choice:"slurm" choice:"sge" default:"slurm"`
	Partition string      `long:"partition" description:"default partition (queue)"`
	Account   string      `long:"account" description:"default account (project)"`
	Python    string      `long:"python" description:"interpreter for --python jobs" default:"python"`
}

type ConfigUseCommand struct {
	Config ConfigFlags `group:"Configuration Options"`
}

type ConfigListCommand struct {
	Config ConfigFlags `group:"Configuration Options" hidden:"true"`
}

var configCommand ConfigCommand

func (x *ConfigSetCommand) Execute(args []string) error {
	if x.Config.Help {
		return core.CreateHelpErr()
	}
	store, err := core.NewConfigStore(appFs)
	if err != nil {
		return errors.Wrap(err, "config")
	}
	config, err := store.Read()
	if err != nil {
		return errors.Wrap(err, "config")
	}
	config[x.Config.Cluster] = core.Cluster{
		Scheduler: x.Scheduler,
		Partition: x.Partition,
		Account:   x.Account,
		Python:    x.Python,
	}
	if err := store.Write(config); err != nil {
		return errors.Wrap(err, "config")
	}
	fmt.Fprintf(stdout, "Saved cluster %s to %s\n", x.Config.Cluster, store.Path)
	return nil
}

func (x *ConfigUseCommand) Execute(args []string) error {
	if x.Config.Help {
		return core.CreateHelpErr()
	}
	store, err := core.NewConfigStore(appFs)
	if err != nil {
		return errors.Wrap(err, "config")
	}
	if err := store.SetTarget(x.Config.Cluster); err != nil {
		return errors.Wrap(err, "config")
	}
	return nil
}

func (x *ConfigListCommand) Execute(args []string) error {
	if x.Config.Help {
		return core.CreateHelpErr()
	}
	store, err := core.NewConfigStore(appFs)
	if err != nil {
		return errors.Wrap(err, "config")
	}
	config, err := store.Read()
	if err != nil {
		return errors.Wrap(err, "config")
	}
	target := store.Target()
	table := [][]string{
		{"", "CLUSTER", "SCHEDULER", "PARTITION", "ACCOUNT", "PYTHON"},
	}
	for _, name := range config.Names() {
		cluster := config[name]
		mark := ""
		if name == target {
			mark = "*"
		}
		table = append(table, []string{mark, name, cluster.Scheduler,
			cluster.Partition, cluster.Account, cluster.Interpreter()})
	}
	core.PrintTable(stdout, table, false)
	return nil
}

func init() {
	parser.AddCommand("config",
		"Cluster profiles",
		"Manage the cluster profiles holding the scheduler and job defaults",
		&configCommand)
}
