// Package threshold coordinates M-of-N authorization of Hedera value
// transfers. A Coordinator creates accounts governed by a threshold Policy,
// builds balanced transfer intents, freezes them into payloads, gathers
// signatures from key holders and submits them through a LedgerClient.
//
// The network is the authority on whether enough signatures are present.
// The coordinator interprets the reported status and distinguishes a
// threshold failure (collect more signatures and resubmit the same frozen
// payload) from a malformed intent or a transport failure.
//
// A typical flow:
//
//	policy, _ := threshold.NewPolicy(2, keyA, keyB, keyC)
//	accountID, _ := coordinator.CreateGovernedAccount(ctx, policy, hedera.NewHbar(20))
//	intent, _ := coordinator.BuildIntent([]threshold.Transfer{
//		{Account: threshold.Account{ID: accountID, Policy: policy}, Amount: hedera.NewHbar(-10)},
//		{Account: threshold.Account{ID: recipient}, Amount: hedera.NewHbar(10)},
//	})
//	pending, _ := coordinator.Freeze(ctx, intent)
//	_ = coordinator.CollectSignatures(ctx, pending, "a", "b")
//	result, err := coordinator.Submit(ctx, pending)
package threshold
