package sqlinline

const QCreateSessionsTable = `--sql ae496a8f-ac11-43aa-a1c0-12df16e57db0
create table if not exists sessions (
  id text primary key,
  tier text not null default 'free',
  usage_count int not null default 0,
  daily_flag_date text,
  single_use jsonb not null default '{}'::jsonb,
  updated_at timestamptz not null default now()
);
`

const QSelectSession = `--sql 5b924e72-d117-43b8-b05f-a841b45c333f
select id, tier, usage_count, coalesce(daily_flag_date, ''), single_use, updated_at
from sessions
where id = $1::text
limit 1;
`

const QSelectSessionForUpdate = `--sql e0477151-53a5-4bd3-8f6e-38e7cd5f182b
select id, tier, usage_count, coalesce(daily_flag_date, ''), single_use, updated_at
from sessions
where id = $1::text
for update;
`

const QUpsertSession = `--sql 04e9c3fd-39a5-4009-a5e1-c7529a7b02a9
insert into sessions(id, tier, usage_count, daily_flag_date, single_use, updated_at)
values ($1::text, $2::text, $3::int, nullif($4::text, ''), $5::jsonb, $6::timestamptz)
on conflict (id) do update
set tier = excluded.tier,
    usage_count = excluded.usage_count,
    daily_flag_date = excluded.daily_flag_date,
    single_use = excluded.single_use,
    updated_at = excluded.updated_at;
`

const QDeleteSession = `--sql 726be745-f869-492e-ab96-10a7327fa7fe
delete from sessions where id = $1::text;
`
